package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcast is an audit record of a sent email blast.
type Broadcast struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Subject   string              `bson:"subject" json:"subject"`
	HTML      string              `bson:"html" json:"html"`
	To        string              `bson:"to" json:"to"`
	BccCount  int                 `bson:"bcc_count" json:"bcc_count"`
	Failed    int                 `bson:"failed" json:"failed"`
	ProgramID *primitive.ObjectID `bson:"program_id,omitempty" json:"program_id,omitempty"`
	SentBy    primitive.ObjectID  `bson:"sent_by" json:"sent_by"`
	SentAt    time.Time           `bson:"sent_at" json:"sent_at"`
}
