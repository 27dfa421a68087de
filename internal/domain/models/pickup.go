// internal/domain/models/pickup.go
package models

import "time"

// PickupRequest is the draft collected by the pickup wizard and, once
// complete, the body posted to the tracking backend. The json names are
// the wire contract and must not change.
type PickupRequest struct {
	// Contact
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`

	// Location
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Zip     string `bson:"zip" json:"zip"`

	// Items is free text describing what will be collected.
	Items string `bson:"items" json:"items"`

	// Schedule
	Date       string `bson:"date" json:"date"`         // YYYY-MM-DD, submitted as captured
	TimeSlot   string `bson:"time_slot" json:"timeSlot"` // morning, afternoon, evening
	PickupType string `bson:"pickup_type" json:"pickupType"`
}

// PickupState is the wizard position plus the draft it has collected so far.
type PickupState struct {
	Step            int           `bson:"step" json:"step"`
	Draft           PickupRequest `bson:"draft" json:"draft"`
	Submitting      bool          `bson:"submitting" json:"submitting"`
	SubmittingSince *time.Time    `bson:"submitting_since,omitempty" json:"submittingSince,omitempty"`
}

// PickupDraft is a persisted wizard state keyed by the id held in the
// browser session.
type PickupDraft struct {
	ID        string      `bson:"_id" json:"id"`
	State     PickupState `bson:"state" json:"state"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// Wizard steps.
const (
	StepContact      = 1
	StepItems        = 2
	StepSchedule     = 3
	StepConfirmation = 4
)

// Option is a value/label pair used for select and radio inputs.
type Option struct {
	Value string // The value submitted and stored
	Label string // The display label in the UI
}

// TimeSlots are the pickup windows offered on the schedule step.
var TimeSlots = []Option{
	{Value: "morning", Label: "Morning (8:00 AM - 12:00 PM)"},
	{Value: "afternoon", Label: "Afternoon (12:00 PM - 4:00 PM)"},
	{Value: "evening", Label: "Evening (4:00 PM - 7:00 PM)"},
}

// DefaultPickupType is preselected when a new draft is opened.
const DefaultPickupType = "residential"

// PickupTypes are the kinds of pickup offered.
var PickupTypes = []Option{
	{Value: "residential", Label: "Residential"},
	{Value: "business", Label: "Business"},
}

// AcceptableItems lists the item categories shown alongside the items step.
var AcceptableItems = []string{
	"Computers",
	"Laptops",
	"Monitors",
	"TVs",
	"Printers",
	"Phones",
	"Tablets",
	"Batteries",
	"Cables",
}

// IsValidTimeSlot checks if a value is one of TimeSlots.
func IsValidTimeSlot(value string) bool {
	return optionLabel(TimeSlots, value) != ""
}

// TimeSlotLabel returns the display label for a time slot value, or the
// value itself when it is unknown.
func TimeSlotLabel(value string) string {
	if l := optionLabel(TimeSlots, value); l != "" {
		return l
	}
	return value
}

// PickupTypeLabel returns the display label for a pickup type, or the
// value itself when it is not listed.
func PickupTypeLabel(value string) string {
	if l := optionLabel(PickupTypes, value); l != "" {
		return l
	}
	return value
}

// IsValidPickupType checks if a value is one of PickupTypes.
func IsValidPickupType(value string) bool {
	return optionLabel(PickupTypes, value) != ""
}

// OptionValues returns the values of opts in order.
func OptionValues(opts []Option) []string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return values
}

func optionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}
