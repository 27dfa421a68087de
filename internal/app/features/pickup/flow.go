package pickup

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/ecorecycle/internal/app/system/network"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/ecorecycle/internal/app/system/wizard"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"go.uber.org/zap"
)

// Messages shown to the visitor.
const (
	MsgRejected    = "Failed to schedule pickup. Please try again."
	MsgUnavailable = "An error occurred. Please try again later."
	MsgBusy        = "Your pickup is already being submitted. Please wait a moment."
	MsgStoreFailed = "We could not save your pickup details. Please try again."
)

// ErrUnsaved is returned by submit when the backend scheduled the pickup
// but the draft could not be moved to the confirmation step. The returned
// state is the confirmation state; callers report success.
var ErrUnsaved = errors.New("pickup scheduled but draft not updated")

// SubmitError is a submission the backend did not accept. Message is
// safe to show.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// current returns the session's draft, creating one when the session has
// none or its draft has expired.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (string, wizard.State, error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "load pickup draft")
	defer cancel()

	if id := h.sessionMgr.DraftID(r); id != "" {
		s, err := h.drafts.Get(ctx, id)
		if err == nil {
			return id, s, nil
		}
		if !errors.Is(err, drafts.ErrNotFound) {
			return "", wizard.State{}, err
		}
	}

	s := wizard.New()
	id, err := h.drafts.Create(ctx, s)
	if err != nil {
		return "", wizard.State{}, err
	}
	if err := h.sessionMgr.SetDraftID(w, r, id); err != nil {
		return "", wizard.State{}, err
	}
	return id, s, nil
}

// save stores s over the draft loaded on step from.
func (h *Handler) save(r *http.Request, id string, from int, s wizard.State) error {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "save pickup draft")
	defer cancel()
	return h.drafts.Save(ctx, id, from, s)
}

// discard deletes the draft and forgets it in the session.
func (h *Handler) discard(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "delete pickup draft")
	defer cancel()
	if err := h.drafts.Delete(ctx, id); err != nil {
		h.errLog.Log(r, "failed to delete pickup draft", err)
	}
	if err := h.sessionMgr.ClearDraftID(w, r); err != nil {
		h.errLog.Log(r, "failed to clear draft from session", err)
	}
}

// next merges fields and advances. When the step is incomplete the merged
// values are still stored so the visitor does not retype them.
func (h *Handler) next(r *http.Request, id string, s wizard.State, fields map[string]string) (wizard.State, error) {
	fields = clean(fields)
	merged, err := h.machine.UpdateAll(s, fields)
	if err != nil {
		return s, err
	}
	advanced, err := h.machine.Advance(merged)
	if err != nil {
		var se *wizard.StepError
		if errors.As(err, &se) {
			if serr := h.save(r, id, s.Step, merged); serr != nil {
				return s, serr
			}
		}
		return merged, err
	}
	if err := h.save(r, id, s.Step, advanced); err != nil {
		return s, err
	}
	return advanced, nil
}

// back keeps whatever fields are valid and retreats one step.
func (h *Handler) back(r *http.Request, id string, s wizard.State, fields map[string]string) (wizard.State, error) {
	fields = clean(fields)
	merged := s
	for _, name := range wizard.Fields {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if u, err := h.machine.Update(merged, name, v); err == nil {
			merged = u
		}
	}
	prev, err := h.machine.Retreat(merged)
	if err != nil {
		return s, err
	}
	if err := h.save(r, id, s.Step, prev); err != nil {
		return s, err
	}
	return prev, nil
}

// submit merges the schedule fields and sends the draft to the backend.
// The stored draft is marked as submitting for the duration of the call,
// so a second submit or step change for the same draft gets
// drafts.ErrLocked. A failed submission returns a *SubmitError and leaves
// the draft on step 3. ErrUnsaved means the pickup was scheduled anyway.
func (h *Handler) submit(r *http.Request, id string, s wizard.State, fields map[string]string) (wizard.State, error) {
	fields = clean(fields)
	merged, err := h.machine.UpdateAll(s, fields)
	if err != nil {
		return s, err
	}
	locked, payload, err := h.machine.BeginSubmit(merged)
	if err != nil {
		var se *wizard.StepError
		if errors.As(err, &se) {
			if serr := h.save(r, id, s.Step, merged); serr != nil {
				return s, serr
			}
		}
		return merged, err
	}
	if err := h.save(r, id, s.Step, locked); err != nil {
		return merged, err
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.logger, "submit pickup")
	res, sendErr := h.backend.SubmitPickup(ctx, auth.Token(r), payload)
	cancel()

	h.record(r, id, payload, res, sendErr)
	final := h.machine.FinishSubmit(locked, sendErr == nil)

	// The lock must be released even if the visitor went away.
	rctx, rcancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Store())
	defer rcancel()
	if err := h.drafts.Release(rctx, id, final); err != nil {
		h.errLog.Log(r, "failed to release pickup draft", err,
			zap.Bool("scheduled", sendErr == nil))
		if sendErr == nil {
			h.sendConfirmation(r, payload)
			return final, ErrUnsaved
		}
	}

	if sendErr != nil {
		msg := MsgUnavailable
		var statusErr *backend.StatusError
		if errors.As(sendErr, &statusErr) {
			msg = MsgRejected
		}
		return final, &SubmitError{Message: msg, Err: sendErr}
	}

	h.sendConfirmation(r, payload)
	return final, nil
}

// record writes the attempt to the submission log. Failures are logged only.
func (h *Handler) record(r *http.Request, id string, p models.PickupRequest, res *backend.Result, sendErr error) {
	sub := models.Submission{
		Kind:      models.SubmissionPickup,
		Reference: id,
		Email:     p.Email,
		Payload:   payloadMap(p),
		Status:    models.SubmissionSent,
		ClientIP:  network.GetClientIP(r),
	}
	var statusErr *backend.StatusError
	switch {
	case sendErr == nil:
		if res != nil {
			sub.HTTPStatus = res.StatusCode
		}
	case errors.As(sendErr, &statusErr):
		sub.Status = models.SubmissionRejected
		sub.HTTPStatus = statusErr.StatusCode
		sub.Error = sendErr.Error()
	default:
		sub.Status = models.SubmissionFailed
		sub.Error = sendErr.Error()
	}

	if sendErr != nil {
		h.logger.Warn("pickup submission failed",
			zap.String("draft_id", id),
			zap.String("status", sub.Status),
			zap.Int("http_status", sub.HTTPStatus),
			zap.Error(sendErr))
	} else {
		h.logger.Info("pickup scheduled",
			zap.String("draft_id", id),
			zap.String("date", p.Date),
			zap.String("time_slot", p.TimeSlot))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Store())
	defer cancel()
	if _, err := h.subs.Record(ctx, sub); err != nil {
		h.errLog.Log(r, "failed to record pickup submission", err)
	}
}

// sendConfirmation emails the visitor a summary. Failures are logged only.
func (h *Handler) sendConfirmation(r *http.Request, p models.PickupRequest) {
	if h.mail == nil || p.Email == "" {
		return
	}
	subject, text, html := mailer.PickupConfirmationEmail(mailer.PickupConfirmationData{
		AppName:   viewdata.SiteName(),
		Name:      p.Name,
		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Zip:       p.Zip,
		Items:     p.Items,
		Date:      p.Date,
		DateLabel: h.dateLabel(p.Date),
		TimeSlot:  models.TimeSlotLabel(p.TimeSlot),
		Type:      models.PickupTypeLabel(p.PickupType),
	})
	err := h.mail.Send(mailer.Email{
		To:       p.Email,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	})
	if err != nil && !errors.Is(err, mailer.ErrDisabled) {
		h.errLog.Log(r, "failed to send pickup confirmation", err)
	}
}

// dateLabel renders a wire date as "Monday, 10 March 2025", or returns it
// unchanged when it does not parse.
func (h *Handler) dateLabel(date string) string {
	t, err := h.cal.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}

// clean strips markup from the free-text field. The caller's map is not
// modified.
func clean(fields map[string]string) map[string]string {
	v, ok := fields["items"]
	if !ok {
		return fields
	}
	out := make(map[string]string, len(fields))
	for k, val := range fields {
		out[k] = val
	}
	out["items"] = htmlsanitize.StripTags(v)
	return out
}

func payloadMap(p models.PickupRequest) map[string]any {
	return map[string]any{
		"name":       p.Name,
		"email":      p.Email,
		"phone":      p.Phone,
		"address":    p.Address,
		"city":       p.City,
		"state":      p.State,
		"zip":        p.Zip,
		"items":      p.Items,
		"date":       p.Date,
		"timeSlot":   p.TimeSlot,
		"pickupType": p.PickupType,
	}
}

// draftValues maps the draft's json field names to their values.
func draftValues(d models.PickupRequest) map[string]string {
	return map[string]string{
		"name":       d.Name,
		"email":      d.Email,
		"phone":      d.Phone,
		"address":    d.Address,
		"city":       d.City,
		"state":      d.State,
		"zip":        d.Zip,
		"items":      d.Items,
		"date":       d.Date,
		"timeSlot":   d.TimeSlot,
		"pickupType": d.PickupType,
	}
}
