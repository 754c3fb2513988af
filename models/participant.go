package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is a structured roster entry.
type Participant struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"full_name" json:"full_name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender         string             `bson:"gender,omitempty" json:"gender,omitempty"`
	AgeGroup       string             `bson:"age_group,omitempty" json:"age_group,omitempty"`
	State          string             `bson:"state,omitempty" json:"state,omitempty"`
	Organization   string             `bson:"organization,omitempty" json:"organization,omitempty"`
	ReferralSource string             `bson:"referral_source,omitempty" json:"referral_source,omitempty"`
	Answers        map[string]string  `bson:"answers,omitempty" json:"answers,omitempty"`
	RegisteredAt   time.Time          `bson:"registered_at,omitempty" json:"registered_at,omitempty"`
}

// ParticipantKind tags the shape of a roster entry. Historical data
// contains bare email strings and nulls alongside structured documents,
// so every consumer of the participant list matches on the kind instead
// of assuming a document.
type ParticipantKind int

const (
	ParticipantMissing ParticipantKind = iota // null entry
	ParticipantLegacy                         // bare email string
	ParticipantStructured
)

// ParticipantEntry is one element of a program's participants array:
// Structured(Participant) | Legacy(email) | Missing.
type ParticipantEntry struct {
	Kind        ParticipantKind
	Participant *Participant // Kind == ParticipantStructured
	LegacyEmail string       // Kind == ParticipantLegacy
}

// StructuredEntry wraps a participant for appending to a roster.
func StructuredEntry(p Participant) ParticipantEntry {
	return ParticipantEntry{Kind: ParticipantStructured, Participant: &p}
}

// Email returns the contact address of an entry, or "" for entries
// without one.
func (e ParticipantEntry) Email() string {
	switch e.Kind {
	case ParticipantStructured:
		return e.Participant.Email
	case ParticipantLegacy:
		return e.LegacyEmail
	}
	return ""
}

func (e ParticipantEntry) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch e.Kind {
	case ParticipantStructured:
		return bson.MarshalValue(e.Participant)
	case ParticipantLegacy:
		return bson.MarshalValue(e.LegacyEmail)
	}
	return bson.TypeNull, []byte{}, nil
}

func (e *ParticipantEntry) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeEmbeddedDocument:
		var p Participant
		if err := bson.Unmarshal(data, &p); err != nil {
			return err
		}
		*e = ParticipantEntry{Kind: ParticipantStructured, Participant: &p}
	case bson.TypeString:
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return err
		}
		*e = ParticipantEntry{Kind: ParticipantLegacy, LegacyEmail: s}
	default:
		// null, undefined, or anything unexpected degrades to Missing
		*e = ParticipantEntry{Kind: ParticipantMissing}
	}
	return nil
}

// MarshalJSON keeps API responses faithful to the stored shape: a
// document, a bare string, or null.
func (e ParticipantEntry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ParticipantStructured:
		return json.Marshal(e.Participant)
	case ParticipantLegacy:
		return json.Marshal(e.LegacyEmail)
	}
	return []byte("null"), nil
}

// FindParticipant returns the index of the structured entry with the
// given id, or -1. Legacy and missing entries never match: they carry
// no identifier and cannot be targeted by edit or delete operations.
func FindParticipant(entries []ParticipantEntry, id primitive.ObjectID) int {
	for i, e := range entries {
		if e.Kind == ParticipantStructured && e.Participant.ID == id {
			return i
		}
	}
	return -1
}

// RosterEmails collects the non-empty contact addresses from a roster,
// including legacy string entries, for broadcast sending.
func RosterEmails(entries []ParticipantEntry) []string {
	var out []string
	for _, e := range entries {
		if addr := e.Email(); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
