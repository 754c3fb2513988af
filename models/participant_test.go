package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mixedRoster builds the shapes historical program documents actually
// contain: a null, a structured participant, and a bare email string.
func mixedRoster(t *testing.T, id primitive.ObjectID) []ParticipantEntry {
	t.Helper()

	doc := bson.M{
		"participants": bson.A{
			nil,
			bson.M{"_id": id, "full_name": "Ada", "email": "a@x.com"},
			"legacy@x.com",
		},
	}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded struct {
		Participants []ParticipantEntry `bson:"participants"`
	}
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Participants, 3)
	return decoded.Participants
}

func TestParticipantEntry_DecodeMixedArray(t *testing.T) {
	id := primitive.NewObjectID()
	entries := mixedRoster(t, id)

	require.Equal(t, ParticipantMissing, entries[0].Kind)

	require.Equal(t, ParticipantStructured, entries[1].Kind)
	require.Equal(t, id, entries[1].Participant.ID)
	require.Equal(t, "Ada", entries[1].Participant.FullName)
	require.Equal(t, "a@x.com", entries[1].Participant.Email)

	require.Equal(t, ParticipantLegacy, entries[2].Kind)
	require.Equal(t, "legacy@x.com", entries[2].LegacyEmail)
}

func TestParticipantEntry_RoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	original := []ParticipantEntry{
		{Kind: ParticipantMissing},
		StructuredEntry(Participant{ID: id, FullName: "Ada", Email: "a@x.com", RegisteredAt: time.Now().Truncate(time.Millisecond).UTC()}),
		{Kind: ParticipantLegacy, LegacyEmail: "legacy@x.com"},
	}

	raw, err := bson.Marshal(bson.M{"participants": original})
	require.NoError(t, err)

	var decoded struct {
		Participants []ParticipantEntry `bson:"participants"`
	}
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	require.Equal(t, ParticipantMissing, decoded.Participants[0].Kind)
	require.Equal(t, ParticipantStructured, decoded.Participants[1].Kind)
	require.Equal(t, "a@x.com", decoded.Participants[1].Participant.Email)
	require.Equal(t, ParticipantLegacy, decoded.Participants[2].Kind)
	require.Equal(t, "legacy@x.com", decoded.Participants[2].LegacyEmail)
}

func TestParticipantEntry_JSONShapes(t *testing.T) {
	id := primitive.NewObjectID()
	entries := mixedRoster(t, id)

	out, err := json.Marshal(entries)
	require.NoError(t, err)

	var generic []any
	require.NoError(t, json.Unmarshal(out, &generic))
	require.Nil(t, generic[0])
	_, isObject := generic[1].(map[string]any)
	require.True(t, isObject)
	require.Equal(t, "legacy@x.com", generic[2])
}

func TestFindParticipant_OnlyStructuredMatch(t *testing.T) {
	id := primitive.NewObjectID()
	entries := mixedRoster(t, id)

	// the structured entry is addressable
	require.Equal(t, 1, FindParticipant(entries, id))

	// null and legacy entries can never be targeted: an unrelated id
	// finds nothing
	require.Equal(t, -1, FindParticipant(entries, primitive.NewObjectID()))
}

func TestRosterEmails_IncludesLegacy(t *testing.T) {
	id := primitive.NewObjectID()
	entries := mixedRoster(t, id)

	// null contributes nothing; structured and legacy both do
	require.Equal(t, []string{"a@x.com", "legacy@x.com"}, RosterEmails(entries))
}

func TestParticipantEntry_Email(t *testing.T) {
	require.Equal(t, "", ParticipantEntry{Kind: ParticipantMissing}.Email())
	require.Equal(t, "x@y.com", ParticipantEntry{Kind: ParticipantLegacy, LegacyEmail: "x@y.com"}.Email())
	require.Equal(t, "a@b.com", StructuredEntry(Participant{Email: "a@b.com"}).Email())
}
