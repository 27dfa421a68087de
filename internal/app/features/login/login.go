// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/store/ratelimit"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/formutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/normalize"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown on the login form.
const (
	MsgInvalid     = "Invalid email or password"
	MsgMissing     = "Please enter your email and password."
	MsgUnavailable = "An error occurred. Please try again later."
	MsgLockedOut   = "Too many failed login attempts. Please try again later."
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Handler provides login handlers.
type Handler struct {
	backend        Authenticator
	rateLimitStore *ratelimit.Store // nil if rate limiting disabled
	sessionMgr     *auth.SessionManager
	errLog         *errorsfeature.ErrorLogger
	logger         *zap.Logger
}

// NewHandler creates a new login Handler.
// rateLimitStore can be nil to disable rate limiting.
func NewHandler(
	authenticator Authenticator,
	rateLimitStore *ratelimit.Store,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		backend:        authenticator,
		rateLimitStore: rateLimitStore,
		sessionMgr:     sessionMgr,
		errLog:         errLog,
		logger:         logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	formutil.Base
	Email     string
	ReturnURL string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

func (h *Handler) newVM(r *http.Request, email, returnURL string) LoginVM {
	return LoginVM{
		Base:      formutil.NewBase(r, "Sign In", "/"),
		Email:     email,
		ReturnURL: returnURL,
	}
}

// showLogin displays the login form. Signed-in visitors go home.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login/index", h.newVM(r, "", query.Get(r, "return")))
}

// handleLogin checks the rate limit, asks the auth API for a token and
// stores it in the session.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")
	vm := h.newVM(r, email, returnURL)

	if email == "" || password == "" {
		vm.SetError(MsgMissing)
		templates.Render(w, r, "login/index", vm)
		return
	}

	// Check rate limit before processing
	if h.rateLimitStore != nil {
		allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(r.Context(), email)
		if !allowed {
			h.logger.Warn("login rate limited", zap.String("email", email))
			vm.SetError(lockoutMessage(lockedUntil))
			templates.Render(w, r, "login/index", vm)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.logger, "login")
	token, err := h.backend.Login(ctx, email, password)
	cancel()

	if err != nil {
		var statusErr *backend.StatusError
		if !errors.As(err, &statusErr) {
			h.errLog.Log(r, "login request failed", err)
			vm.SetError(MsgUnavailable)
			templates.Render(w, r, "login/index", vm)
			return
		}

		// Record failure for rate limiting
		if h.rateLimitStore != nil {
			if lockedOut, lockedUntil := h.rateLimitStore.RecordFailure(r.Context(), email); lockedOut {
				h.logger.Warn("login locked out", zap.String("email", email))
				vm.SetError(lockoutMessage(lockedUntil))
				templates.Render(w, r, "login/index", vm)
				return
			}
		}
		h.logger.Info("login refused",
			zap.String("email", email),
			zap.Int("status", statusErr.StatusCode))
		vm.SetError(MsgInvalid)
		templates.Render(w, r, "login/index", vm)
		return
	}

	// Clear rate limit on successful login
	if h.rateLimitStore != nil {
		if err := h.rateLimitStore.ClearOnSuccess(r.Context(), email); err != nil {
			h.logger.Warn("failed to clear login attempts", zap.Error(err))
		}
	}

	if err := h.sessionMgr.CreateSession(w, r, email, "", token); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("login succeeded", zap.String("email", email))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

func lockoutMessage(lockedUntil *time.Time) string {
	if lockedUntil == nil {
		return MsgLockedOut
	}
	remaining := time.Until(*lockedUntil)
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed login attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}
