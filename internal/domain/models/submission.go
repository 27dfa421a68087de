// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission kinds.
const (
	SubmissionPickup   = "pickup"
	SubmissionContact  = "contact"
	SubmissionDonation = "donation"
)

// Submission outcomes.
const (
	SubmissionSent     = "sent"     // remote accepted (2xx / success=true)
	SubmissionRejected = "rejected" // remote answered but refused
	SubmissionFailed   = "failed"   // remote could not be reached
)

// Submission is one outbound attempt to the tracking backend or the form
// relay. Entries are written for troubleshooting only; nothing replays them.
type Submission struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind       string             `bson:"kind" json:"kind"`
	Reference  string             `bson:"reference" json:"reference"` // draft id or receipt id
	Email      string             `bson:"email" json:"email"`
	Payload    map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	Status     string             `bson:"status" json:"status"`
	HTTPStatus int                `bson:"http_status,omitempty" json:"http_status,omitempty"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	ClientIP   string             `bson:"client_ip,omitempty" json:"client_ip,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
