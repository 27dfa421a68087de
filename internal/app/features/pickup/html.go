package pickup

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/system/formutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/ecorecycle/internal/app/system/wizard"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// closedLookahead is how far ahead holiday closures are listed for the
// date picker.
const closedLookahead = 120

// Guidelines are shown on the schedule step.
var Guidelines = []string{
	"Our team will arrive during your selected time slot",
	"Please ensure someone is available to hand over the items",
	"Have your items ready and accessible",
	"We'll handle all the heavy lifting",
}

// Input describes a text input on the contact step.
type Input struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
}

// ContactInputs are the contact step's text inputs in form order.
var ContactInputs = []Input{
	{Name: "name", Label: "Full Name", Type: "text", Placeholder: "John Doe"},
	{Name: "email", Label: "Email", Type: "email", Placeholder: "john@example.com"},
	{Name: "phone", Label: "Phone Number", Type: "tel", Placeholder: "(123) 456-7890"},
	{Name: "address", Label: "Street Address", Type: "text", Placeholder: "123 Main St"},
	{Name: "city", Label: "City", Type: "text", Placeholder: "Anytown"},
	{Name: "state", Label: "State", Type: "text", Placeholder: "CA"},
	{Name: "zip", Label: "ZIP Code", Type: "text", Placeholder: "12345"},
}

// WizardVM is the view model for the wizard page.
type WizardVM struct {
	formutil.Base
	Step            int
	Progress        int
	Values          map[string]string
	ContactInputs   []Input
	TimeSlots       []models.Option
	PickupTypes     []models.Option
	AcceptableItems []string
	Guidelines      []string
	MinDate         string
	ClosedDays      string
}

// ConfirmationVM is the view model for the confirmation page.
type ConfirmationVM struct {
	viewdata.BaseVM
	Request         models.PickupRequest
	DateLabel       string
	TimeSlotLabel   string
	PickupTypeLabel string
	Emailed         bool
}

// show renders the current step, starting a draft if the session has none.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	_, s, err := h.current(w, r)
	if err != nil {
		h.errLog.Log(r, "failed to load pickup draft", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if s.Step == models.StepConfirmation {
		http.Redirect(w, r, "/pickup/confirmation", http.StatusSeeOther)
		return
	}
	h.render(w, r, s, nil, nil)
}

// handleNext merges the posted step and moves forward.
func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(id string, s wizard.State, fields map[string]string) (wizard.State, error) {
		return h.next(r, id, s, fields)
	}, "/pickup")
}

// handleBack merges the posted step and moves back.
func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(id string, s wizard.State, fields map[string]string) (wizard.State, error) {
		return h.back(r, id, s, fields)
	}, "/pickup")
}

// handleSubmit merges the schedule step and submits the pickup.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(id string, s wizard.State, fields map[string]string) (wizard.State, error) {
		return h.submit(r, id, s, fields)
	}, "/pickup/confirmation")
}

// step runs one form transition: on success it redirects to done, on
// failure it re-renders the wizard with the posted values and a message.
func (h *Handler) step(w http.ResponseWriter, r *http.Request, run func(string, wizard.State, map[string]string) (wizard.State, error), done string) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id, s, err := h.current(w, r)
	if err != nil {
		h.errLog.Log(r, "failed to load pickup draft", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if s.Step == models.StepConfirmation {
		http.Redirect(w, r, "/pickup/confirmation", http.StatusSeeOther)
		return
	}

	fields := postedFields(r, s.Step)
	next, err := run(id, s, fields)
	switch {
	case err == nil:
		http.Redirect(w, r, done, http.StatusSeeOther)
	case errors.Is(err, ErrUnsaved):
		// The stored draft cannot back the confirmation page, so it is
		// shown from the submitted state.
		h.discard(w, r, id)
		h.renderConfirmation(w, r, next)
	case errors.Is(err, wizard.ErrComplete):
		http.Redirect(w, r, "/pickup/confirmation", http.StatusSeeOther)
	case errors.Is(err, wizard.ErrSubmitRequired), errors.Is(err, wizard.ErrNotOnSchedule):
		http.Redirect(w, r, "/pickup", http.StatusSeeOther)
	default:
		if !isVisitorError(err) {
			h.errLog.Log(r, "pickup step failed", err)
		}
		h.render(w, r, next, fields, err)
	}
}

// handleReset discards the draft and starts over.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if id := h.sessionMgr.DraftID(r); id != "" {
		h.discard(w, r, id)
	}
	http.Redirect(w, r, "/pickup", http.StatusSeeOther)
}

// showConfirmation renders a scheduled pickup once, then discards the draft.
func (h *Handler) showConfirmation(w http.ResponseWriter, r *http.Request) {
	id := h.sessionMgr.DraftID(r)
	if id == "" {
		http.Redirect(w, r, "/pickup", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "load pickup draft")
	s, err := h.drafts.Get(ctx, id)
	cancel()
	if err != nil && !errors.Is(err, drafts.ErrNotFound) {
		h.errLog.Log(r, "failed to load pickup draft", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err != nil || s.Step != models.StepConfirmation {
		http.Redirect(w, r, "/pickup", http.StatusSeeOther)
		return
	}

	h.discard(w, r, id)
	h.renderConfirmation(w, r, s)
}

func (h *Handler) renderConfirmation(w http.ResponseWriter, r *http.Request, s wizard.State) {
	vm := ConfirmationVM{
		BaseVM:          viewdata.NewBaseVM(r, "Pickup Scheduled", "/"),
		Request:         s.Draft,
		DateLabel:       h.dateLabel(s.Draft.Date),
		TimeSlotLabel:   models.TimeSlotLabel(s.Draft.TimeSlot),
		PickupTypeLabel: models.PickupTypeLabel(s.Draft.PickupType),
		Emailed:         h.mailEnabled(),
	}
	templates.Render(w, r, "pickup/confirmation", vm)
}

// render shows the wizard on s.Step. posted values override the stored
// draft so a rejected form comes back as it was typed.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, s wizard.State, posted map[string]string, err error) {
	values := draftValues(s.Draft)
	for k, v := range posted {
		values[k] = v
	}

	now := time.Now()
	vm := WizardVM{
		Base:            formutil.NewBase(r, "Schedule an E-Waste Pickup", "/"),
		Step:            s.Step,
		Progress:        wizard.Progress(s),
		Values:          values,
		ContactInputs:   ContactInputs,
		TimeSlots:       models.TimeSlots,
		PickupTypes:     models.PickupTypes,
		AcceptableItems: models.AcceptableItems,
		Guidelines:      Guidelines,
		MinDate:         schedule.FormatDate(now.In(h.cal.Location())),
		ClosedDays:      h.closedDays(now),
	}
	if err != nil {
		setFormError(&vm.Base, err)
	}

	templates.Render(w, r, "pickup/wizard", vm)
}

// closedDays lists upcoming non-Sunday closures as comma separated dates.
func (h *Handler) closedDays(now time.Time) string {
	var out []string
	day := now.In(h.cal.Location())
	for i := 0; i < closedLookahead; i++ {
		if day.Weekday() != time.Sunday && !h.cal.IsOpen(day) {
			out = append(out, schedule.FormatDate(day))
		}
		day = day.AddDate(0, 0, 1)
	}
	return strings.Join(out, ",")
}

func (h *Handler) mailEnabled() bool {
	if h.mail == nil {
		return false
	}
	if e, ok := h.mail.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

// postedFields returns the posted values of the fields that step collects.
func postedFields(r *http.Request, step int) map[string]string {
	fields := map[string]string{}
	for _, name := range wizard.StepFields[step] {
		if vals, ok := r.PostForm[name]; ok && len(vals) > 0 {
			fields[name] = vals[0]
		}
	}
	return fields
}

// setFormError turns a transition error into the form's messages.
func setFormError(b *formutil.Base, err error) {
	var stepErr *wizard.StepError
	var fieldErr *wizard.FieldError
	var submitErr *SubmitError
	switch {
	case errors.As(err, &stepErr):
		b.SetError(stepErr.First())
		b.FieldErrors = make(map[string]string, len(stepErr.Fields))
		for _, f := range stepErr.Fields {
			if _, seen := b.FieldErrors[f.Field]; !seen {
				b.FieldErrors[f.Field] = f.Message
			}
		}
	case errors.As(err, &fieldErr):
		b.SetError(fieldErr.Message)
		b.FieldErrors = map[string]string{fieldErr.Field: fieldErr.Message}
	case errors.As(err, &submitErr):
		b.SetError(submitErr.Message)
	case errors.Is(err, drafts.ErrLocked), errors.Is(err, wizard.ErrSubmitting):
		b.SetError(MsgBusy)
	default:
		b.SetError(MsgStoreFailed)
	}
}

// isVisitorError reports whether err is an expected outcome of what the
// visitor sent rather than a fault worth logging.
func isVisitorError(err error) bool {
	var stepErr *wizard.StepError
	var fieldErr *wizard.FieldError
	var submitErr *SubmitError
	return errors.As(err, &stepErr) ||
		errors.As(err, &fieldErr) ||
		errors.As(err, &submitErr) ||
		errors.Is(err, wizard.ErrUnknownField) ||
		errors.Is(err, drafts.ErrLocked) ||
		errors.Is(err, wizard.ErrSubmitting)
}
