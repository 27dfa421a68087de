// internal/app/features/logout/logout.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DraftDeleter removes a pickup draft.
type DraftDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Handler provides logout handlers.
type Handler struct {
	sessionMgr *auth.SessionManager
	drafts     DraftDeleter // nil leaves drafts to the cleanup job
	logger     *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(sessionMgr *auth.SessionManager, drafts DraftDeleter, logger *zap.Logger) *Handler {
	return &Handler{
		sessionMgr: sessionMgr,
		drafts:     drafts,
		logger:     logger,
	}
}

// Routes returns a chi.Router with logout routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessionMgr.RequireAuth)
	r.Post("/", h.handleLogout)
	r.Get("/", h.handleLogout) // Allow GET for simple logout links
	return r
}

// handleLogout ends the session and drops the visitor's pickup draft.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := h.sessionMgr.DraftID(r); id != "" && h.drafts != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
		if err := h.drafts.Delete(ctx, id); err != nil {
			h.logger.Warn("failed to delete pickup draft on logout",
				zap.String("draft_id", id),
				zap.Error(err))
		}
		cancel()
	}

	if user, ok := auth.CurrentUser(r); ok {
		h.logger.Info("logout", zap.String("email", user.Email))
	}

	h.sessionMgr.DestroySession(w, r)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
