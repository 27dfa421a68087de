// internal/app/features/contact/contact.go
package contact

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/formrelay"
	"github.com/dalemusser/ecorecycle/internal/app/system/formutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecorecycle/internal/app/system/inputval"
	"github.com/dalemusser/ecorecycle/internal/app/system/network"
	"github.com/dalemusser/ecorecycle/internal/app/system/normalize"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messages shown when the relay does not take the message.
const (
	MsgRejected    = "Failed to send your message. Please try again."
	MsgUnavailable = "An error occurred. Please try again later."
)

// Relay forwards form fields by email.
type Relay interface {
	Submit(ctx context.Context, fields map[string]any) (*formrelay.Response, error)
}

// Handler provides contact form handlers.
type Handler struct {
	relay  Relay
	subs   *submissions.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new contact Handler.
func NewHandler(relay Relay, subs *submissions.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		relay:  relay,
		subs:   subs,
		errLog: errLog,
		logger: logger,
	}
}

// FAQ is a question answered on the contact page.
type FAQ struct {
	Question string
	Answer   string
}

// FAQs are shown below the form.
var FAQs = []FAQ{
	{
		Question: "How quickly will I receive a response to my inquiry?",
		Answer:   "We strive to respond to all inquiries within 24-48 business hours. For urgent matters, please call our customer service line.",
	},
	{
		Question: "Do you offer pickup services nationwide?",
		Answer:   "Currently, we offer pickup services in select metropolitan areas and surrounding suburbs. Please contact us to confirm service availability in your location.",
	},
	{
		Question: "Can I drop off my e-waste instead of scheduling a pickup?",
		Answer:   "Yes, we have drop-off locations in several cities. Please contact us for the nearest drop-off point to your location.",
	},
}

type contactInput struct {
	Name    string `json:"name" validate:"required,max=200" label:"Name"`
	Email   string `json:"email" validate:"required,email,max=254" label:"Email"`
	Phone   string `json:"phone" validate:"phone" label:"Phone"`
	Subject string `json:"subject" validate:"required,subject" label:"Subject"`
	Message string `json:"message" validate:"required,max=5000" label:"Message"`
}

// FormVM is the view model for the contact page.
type FormVM struct {
	formutil.Base
	Name     string
	Email    string
	Phone    string
	Subject  string
	Message  string
	Subjects []models.Option
	FAQs     []FAQ
	Sent     bool
}

// Routes returns a chi.Router with contact routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.handleSubmit)
	return r
}

func (h *Handler) newVM(r *http.Request) FormVM {
	return FormVM{
		Base:     formutil.NewBase(r, "Contact Us", "/"),
		Subjects: models.ContactSubjects,
		FAQs:     FAQs,
	}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "contact/index", h.newVM(r))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := contactInput{
		Name:    normalize.Name(r.FormValue("name")),
		Email:   normalize.Email(r.FormValue("email")),
		Phone:   normalize.Phone(r.FormValue("phone")),
		Subject: normalize.Subject(r.FormValue("subject")),
		Message: htmlsanitize.StripTags(normalize.Message(r.FormValue("message"))),
	}

	vm := h.newVM(r)
	vm.Name, vm.Email, vm.Phone, vm.Subject, vm.Message = in.Name, in.Email, in.Phone, in.Subject, in.Message

	if res := inputval.Validate(in); res.HasErrors() {
		vm.SetValidation(res)
		templates.Render(w, r, "contact/index", vm)
		return
	}

	fields := map[string]any{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"subject": in.Subject,
		"message": in.Message,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.logger, "relay contact message")
	_, err := h.relay.Submit(ctx, fields)
	cancel()
	h.record(r, in.Email, fields, err)

	if err != nil {
		var rejected *formrelay.RejectedError
		if errors.As(err, &rejected) {
			vm.SetError(MsgRejected)
		} else {
			if errors.Is(err, formrelay.ErrNoAccessKey) {
				h.errLog.Log(r, "contact form relay is not configured", err)
			}
			vm.SetError(MsgUnavailable)
		}
		templates.Render(w, r, "contact/index", vm)
		return
	}

	thanks := h.newVM(r)
	thanks.Title = "Message Sent"
	thanks.Name = in.Name
	thanks.Sent = true
	templates.Render(w, r, "contact/index", thanks)
}

// record writes the attempt to the submission log. Failures are logged only.
func (h *Handler) record(r *http.Request, email string, fields map[string]any, err error) {
	if h.subs == nil {
		return
	}
	sub := models.Submission{
		Kind:      models.SubmissionContact,
		Reference: uuid.NewString(),
		Email:     email,
		Payload:   fields,
		Status:    models.SubmissionSent,
		ClientIP:  network.GetClientIP(r),
	}
	var rejected *formrelay.RejectedError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		sub.Status = models.SubmissionRejected
		sub.HTTPStatus = rejected.StatusCode
		sub.Error = err.Error()
	default:
		sub.Status = models.SubmissionFailed
		sub.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Store())
	defer cancel()
	if _, rerr := h.subs.Record(ctx, sub); rerr != nil {
		h.errLog.Log(r, "failed to record contact submission", rerr)
	}
}
