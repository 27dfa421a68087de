// Package wizard implements the pickup-scheduling wizard as pure transitions
// over an explicit State value.
//
// Steps run 1 (contact and location) -> 2 (items) -> 3 (schedule) ->
// 4 (confirmation). Steps 1 and 2 advance with Advance; step 4 is reached
// only through BeginSubmit followed by a successful FinishSubmit. A Machine
// never mutates the State it is given; every transition returns a new one.
package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	validatorv10 "github.com/go-playground/validator/v10"
)

// State is the wizard position plus the draft collected so far.
type State = models.PickupState

var (
	// ErrUnknownField is returned by Update for a field the draft does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrSubmitRequired is returned by Advance on step 3; leaving it needs a submission.
	ErrSubmitRequired = errors.New("step 3 is completed by submitting")
	// ErrComplete is returned for any change after the confirmation step is reached.
	ErrComplete = errors.New("pickup already scheduled")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("submission in progress")
	// ErrNotOnSchedule is returned by BeginSubmit outside step 3.
	ErrNotOnSchedule = errors.New("submission is only possible from the schedule step")
)

// FieldError describes one rejected draft field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// StepError lists the fields that keep a step from being completed.
type StepError struct {
	Step   int          `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *StepError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("step %d incomplete: %s", e.Step, strings.Join(names, ", "))
}

// First returns the first field message, or "" when there is none.
func (e *StepError) First() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

// Machine holds the collaborators a transition needs. It is safe for
// concurrent use.
type Machine struct {
	cal *schedule.Calendar
	now func() time.Time
	v   *validatorv10.Validate
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine creates a Machine that checks dates against cal.
func NewMachine(cal *schedule.Calendar, opts ...Option) *Machine {
	m := &Machine{cal: cal, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.v = newValidator(m)
	return m
}

// New returns the state of a freshly opened wizard.
func New() State {
	return State{
		Step:  models.StepContact,
		Draft: models.PickupRequest{PickupType: models.DefaultPickupType},
	}
}

// Update merges one field, named by its json name, into the draft.
// An empty value clears the field (pickupType falls back to its default).
func (m *Machine) Update(s State, field, value string) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	value = strings.TrimSpace(value)
	d := s.Draft

	switch field {
	case "name":
		d.Name = value
	case "email":
		d.Email = value
	case "phone":
		d.Phone = value
	case "address":
		d.Address = value
	case "city":
		d.City = value
	case "state":
		d.State = value
	case "zip":
		d.Zip = value
	case "items":
		d.Items = value
	case "date":
		if value != "" {
			if msg := m.dateProblem(value); msg != "" {
				return s, &FieldError{Field: field, Message: msg}
			}
		}
		d.Date = value
	case "timeSlot":
		if value != "" && !models.IsValidTimeSlot(value) {
			return s, &FieldError{Field: field, Message: "Please choose a listed time slot."}
		}
		d.TimeSlot = value
	case "pickupType":
		if value == "" {
			value = models.DefaultPickupType
		}
		if !models.IsValidPickupType(value) {
			return s, &FieldError{Field: field, Message: "Pickup type must be residential or business."}
		}
		d.PickupType = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	s.Draft = d
	return s, nil
}

// UpdateAll applies Update for each field in order, stopping at the first
// error. Fields are applied in a fixed order so results do not depend on
// map iteration.
func (m *Machine) UpdateAll(s State, fields map[string]string) (State, error) {
	for name := range fields {
		if !isField(name) {
			return s, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	next := s
	for _, name := range Fields {
		v, ok := fields[name]
		if !ok {
			continue
		}
		var err error
		if next, err = m.Update(next, name, v); err != nil {
			return s, err
		}
	}
	return next, nil
}

// Advance moves from step 1 to 2 or from 2 to 3 once the current step's
// required fields are present.
func (m *Machine) Advance(s State) (State, error) {
	if err := editable(s); err != nil {
		return s, err
	}
	switch s.Step {
	case models.StepContact, models.StepItems:
		if err := m.CheckStep(s.Draft, s.Step); err != nil {
			return s, err
		}
		s.Step++
		return s, nil
	case models.StepSchedule:
		return s, ErrSubmitRequired
	default:
		return s, fmt.Errorf("invalid step %d", s.Step)
	}
}

// Retreat moves back one step. It is a no-op on step 1 and on the
// confirmation step.
func (m *Machine) Retreat(s State) (State, error) {
	if s.Submitting {
		return s, ErrSubmitting
	}
	if s.Step > models.StepContact && s.Step < models.StepConfirmation {
		s.Step--
	}
	return s, nil
}

// BeginSubmit marks the state as submitting and returns the payload to send.
// The whole draft is validated, not only the schedule step.
func (m *Machine) BeginSubmit(s State) (State, models.PickupRequest, error) {
	if err := editable(s); err != nil {
		return s, models.PickupRequest{}, err
	}
	if s.Step != models.StepSchedule {
		return s, models.PickupRequest{}, ErrNotOnSchedule
	}
	for step := models.StepContact; step <= models.StepSchedule; step++ {
		if err := m.CheckStep(s.Draft, step); err != nil {
			return s, models.PickupRequest{}, err
		}
	}
	now := m.now().UTC()
	s.Submitting = true
	s.SubmittingSince = &now
	return s, s.Draft, nil
}

// FinishSubmit clears the in-flight flag. On success the wizard moves to
// the confirmation step; otherwise it stays on step 3 with the draft intact.
func (m *Machine) FinishSubmit(s State, ok bool) State {
	s.Submitting = false
	s.SubmittingSince = nil
	if ok {
		s.Step = models.StepConfirmation
	}
	return s
}

// Progress returns the progress bar width in percent.
func Progress(s State) int {
	p := (s.Step - 1) * 50
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CheckStep validates the fields that belong to step. It returns a
// *StepError listing every problem, or nil.
func (m *Machine) CheckStep(d models.PickupRequest, step int) error {
	var target any
	switch step {
	case models.StepContact:
		target = contactStep{
			Name: d.Name, Email: d.Email, Phone: d.Phone,
			Address: d.Address, City: d.City, State: d.State, Zip: d.Zip,
		}
	case models.StepItems:
		target = itemsStep{Items: d.Items}
	case models.StepSchedule:
		target = scheduleStep{Date: d.Date, TimeSlot: d.TimeSlot, PickupType: d.PickupType}
	default:
		return nil
	}

	err := m.v.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	se := &StepError{Step: step}
	for _, fe := range verrs {
		se.Fields = append(se.Fields, FieldError{
			Field:   fe.Field(),
			Message: m.message(fe, d),
		})
	}
	return se
}

func (m *Machine) message(fe validatorv10.FieldError, d models.PickupRequest) string {
	label := fieldLabels[fe.Field()]
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "pickupdate":
		if msg := m.dateProblem(d.Date); msg != "" {
			return msg
		}
	}
	return label + " is invalid."
}

// dateProblem explains why value cannot be booked, or returns "".
func (m *Machine) dateProblem(value string) string {
	day, err := m.cal.ParseDate(value)
	if err != nil {
		return "Date must be in YYYY-MM-DD format."
	}
	if reason := m.cal.ClosedReason(day); reason != "" {
		return reason
	}
	if !m.cal.Selectable(day, m.now()) {
		return "Please choose today or a later date."
	}
	return ""
}

func editable(s State) error {
	if s.Submitting {
		return ErrSubmitting
	}
	if s.Step == models.StepConfirmation {
		return ErrComplete
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Step validation                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Fields lists the draft's json field names in form order.
var Fields = []string{
	"name", "email", "phone",
	"address", "city", "state", "zip",
	"items",
	"date", "timeSlot", "pickupType",
}

// StepFields maps each input step to the fields it collects.
var StepFields = map[int][]string{
	models.StepContact:  {"name", "email", "phone", "address", "city", "state", "zip"},
	models.StepItems:    {"items"},
	models.StepSchedule: {"date", "timeSlot", "pickupType"},
}

var fieldLabels = map[string]string{
	"name":       "Name",
	"email":      "Email",
	"phone":      "Phone",
	"address":    "Address",
	"city":       "City",
	"state":      "State",
	"zip":        "ZIP code",
	"items":      "Items",
	"date":       "Pickup date",
	"timeSlot":   "Time slot",
	"pickupType": "Pickup type",
}

func isField(name string) bool {
	_, ok := fieldLabels[name]
	return ok
}

type contactStep struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=40"`
	Address string `json:"address" validate:"required,max=300"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,max=20"`
}

type itemsStep struct {
	Items string `json:"items" validate:"required,max=5000"`
}

type scheduleStep struct {
	Date       string `json:"date" validate:"required,pickupdate"`
	TimeSlot   string `json:"timeSlot" validate:"required,oneof=morning afternoon evening"`
	PickupType string `json:"pickupType" validate:"required,oneof=residential business"`
}

// newValidator returns a validator that reports json field names and knows
// the pickupdate rule.
func newValidator(m *Machine) *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pickupdate", func(fl validatorv10.FieldLevel) bool {
		return m.dateProblem(fl.Field().String()) == ""
	})
	return v
}
