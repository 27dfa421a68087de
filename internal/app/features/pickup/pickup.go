// internal/app/features/pickup/pickup.go
package pickup

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"github.com/dalemusser/ecorecycle/internal/app/system/wizard"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Submitter sends a finished pickup request to the tracking backend.
type Submitter interface {
	SubmitPickup(ctx context.Context, token string, req models.PickupRequest) (*backend.Result, error)
}

// Handler serves the pickup wizard, both as HTML forms and as a JSON API.
// Every browser session owns one draft, referenced from the session cookie.
type Handler struct {
	drafts     *drafts.Store
	subs       *submissions.Store
	backend    Submitter
	mail       mailer.Sender // nil disables confirmation emails
	cal        *schedule.Calendar
	machine    *wizard.Machine
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new pickup Handler.
func NewHandler(
	draftStore *drafts.Store,
	subStore *submissions.Store,
	submitter Submitter,
	mail mailer.Sender,
	cal *schedule.Calendar,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
	opts ...wizard.Option,
) *Handler {
	return &Handler{
		drafts:     draftStore,
		subs:       subStore,
		backend:    submitter,
		mail:       mail,
		cal:        cal,
		machine:    wizard.NewMachine(cal, opts...),
		sessionMgr: sessionMgr,
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes returns a chi.Router with the HTML wizard mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/next", h.handleNext)
	r.Post("/back", h.handleBack)
	r.Post("/submit", h.handleSubmit)
	r.Post("/reset", h.handleReset)
	r.Get("/confirmation", h.showConfirmation)
	return r
}

// APIRoutes returns a chi.Router with the JSON API mounted.
func APIRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.apiState)
	r.Post("/field", h.apiField)
	r.Post("/next", h.apiNext)
	r.Post("/back", h.apiBack)
	r.Post("/submit", h.apiSubmit)
	r.Post("/reset", h.apiReset)
	return r
}
