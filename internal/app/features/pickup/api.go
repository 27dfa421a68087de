package pickup

import (
	"errors"
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecorecycle/internal/app/system/jsonutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/wizard"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
)

// StateResponse is the JSON form of the wizard state.
type StateResponse struct {
	Step       int                  `json:"step"`
	Progress   int                  `json:"progress"`
	Submitting bool                 `json:"submitting"`
	Draft      models.PickupRequest `json:"draft"`
	Message    string               `json:"message,omitempty"`
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type stepRequest struct {
	Fields map[string]string `json:"fields"`
}

func stateResponse(s wizard.State) StateResponse {
	return StateResponse{
		Step:       s.Step,
		Progress:   wizard.Progress(s),
		Submitting: s.Submitting,
		Draft:      s.Draft,
	}
}

// apiState returns the session's wizard state.
func (h *Handler) apiState(w http.ResponseWriter, r *http.Request) {
	_, s, err := h.current(w, r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	jsonutil.OK(w, stateResponse(s))
}

// apiField merges a single field.
func (h *Handler) apiField(w http.ResponseWriter, r *http.Request) {
	var in fieldRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if in.Field == "" {
		jsonutil.BadRequest(w, "field is required")
		return
	}

	id, s, err := h.current(w, r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	value := in.Value
	if in.Field == "items" {
		value = htmlsanitize.StripTags(value)
	}
	next, err := h.machine.Update(s, in.Field, value)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	if err := h.save(r, id, s.Step, next); err != nil {
		h.apiError(w, r, err)
		return
	}
	jsonutil.OK(w, stateResponse(next))
}

// apiNext merges fields and advances.
func (h *Handler) apiNext(w http.ResponseWriter, r *http.Request) {
	h.apiStep(w, r, h.next)
}

// apiBack merges fields and retreats.
func (h *Handler) apiBack(w http.ResponseWriter, r *http.Request) {
	h.apiStep(w, r, h.back)
}

// apiSubmit merges fields and submits. A scheduled pickup is returned
// once on step 4 and the draft is discarded.
func (h *Handler) apiSubmit(w http.ResponseWriter, r *http.Request) {
	var in stepRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	id, s, err := h.current(w, r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	final, err := h.submit(r, id, s, in.Fields)
	if err != nil && !errors.Is(err, ErrUnsaved) {
		h.apiError(w, r, err)
		return
	}

	h.discard(w, r, id)
	resp := stateResponse(final)
	resp.Message = "Pickup scheduled."
	jsonutil.OK(w, resp)
}

// apiReset discards the draft and returns a fresh one.
func (h *Handler) apiReset(w http.ResponseWriter, r *http.Request) {
	var in struct{}
	if r.ContentLength != 0 {
		if err := jsonutil.Decode(w, r, &in); err != nil {
			jsonutil.BadRequest(w, err.Error())
			return
		}
	}

	if id := h.sessionMgr.DraftID(r); id != "" {
		h.discard(w, r, id)
	}
	_, s, err := h.current(w, r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	jsonutil.OK(w, stateResponse(s))
}

type transition func(r *http.Request, id string, s wizard.State, fields map[string]string) (wizard.State, error)

func (h *Handler) apiStep(w http.ResponseWriter, r *http.Request, run transition) {
	var in stepRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	id, s, err := h.current(w, r)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	next, err := run(r, id, s, in.Fields)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	jsonutil.OK(w, stateResponse(next))
}

// apiError maps a transition error to a status code:
// 422 for field problems, 409 for state conflicts, 502 for backend
// refusals and 500 for storage failures.
func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	var stepErr *wizard.StepError
	var fieldErr *wizard.FieldError
	var submitErr *SubmitError
	switch {
	case errors.As(err, &stepErr):
		fields := make(map[string]string, len(stepErr.Fields))
		for _, f := range stepErr.Fields {
			if _, seen := fields[f.Field]; !seen {
				fields[f.Field] = f.Message
			}
		}
		jsonutil.ValidationError(w, stepErr.First(), fields)
	case errors.As(err, &fieldErr):
		jsonutil.ValidationError(w, fieldErr.Message, map[string]string{fieldErr.Field: fieldErr.Message})
	case errors.As(err, &submitErr):
		jsonutil.BadGateway(w, submitErr.Message)
	case errors.Is(err, wizard.ErrUnknownField):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, drafts.ErrLocked), errors.Is(err, wizard.ErrSubmitting):
		jsonutil.Conflict(w, MsgBusy)
	case errors.Is(err, wizard.ErrComplete):
		jsonutil.Conflict(w, "This pickup has already been scheduled.")
	case errors.Is(err, wizard.ErrSubmitRequired):
		jsonutil.Conflict(w, "The schedule step is completed by submitting.")
	case errors.Is(err, wizard.ErrNotOnSchedule):
		jsonutil.Conflict(w, "Complete the earlier steps before submitting.")
	default:
		h.errLog.Log(r, "pickup api request failed", err)
		jsonutil.InternalError(w, MsgStoreFailed)
	}
}
