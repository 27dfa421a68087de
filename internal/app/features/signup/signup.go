// internal/app/features/signup/signup.go
package signup

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/formutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/inputval"
	"github.com/dalemusser/ecorecycle/internal/app/system/normalize"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown on the signup form.
const (
	MsgMismatch    = "Passwords do not match!"
	MsgFailed      = "Signup failed."
	MsgTerms       = "Please accept the Terms of Service and Privacy Policy."
	MsgUnavailable = "An error occurred. Please try again later."
)

// Registrar creates accounts.
type Registrar interface {
	Signup(ctx context.Context, req backend.SignupRequest) (string, error)
}

// Handler provides signup handlers.
type Handler struct {
	backend    Registrar
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new signup Handler.
func NewHandler(registrar Registrar, sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		backend:    registrar,
		sessionMgr: sessionMgr,
		errLog:     errLog,
		logger:     logger,
	}
}

type signupInput struct {
	FirstName string `json:"first_name" validate:"required,max=100" label:"First name"`
	LastName  string `json:"last_name" validate:"required,max=100" label:"Last name"`
	Email     string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password  string `json:"password" validate:"required,max=128" label:"Password"`
}

// SignupVM is the view model for the signup page.
type SignupVM struct {
	formutil.Base
	FirstName string
	LastName  string
	Email     string
	Terms     bool
}

// Routes returns a chi.Router with signup routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.handleSignup)
	return r
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "signup/index", SignupVM{Base: formutil.NewBase(r, "Create an account", "/")})
}

// handleSignup checks the form locally, registers the account and signs
// the visitor in with the returned token.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := signupInput{
		FirstName: normalize.Name(r.FormValue("first_name")),
		LastName:  normalize.Name(r.FormValue("last_name")),
		Email:     normalize.Email(r.FormValue("email")),
		Password:  r.FormValue("password"),
	}
	confirm := r.FormValue("confirm_password")

	vm := SignupVM{
		Base:      formutil.NewBase(r, "Create an account", "/"),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Terms:     r.FormValue("terms") != "",
	}

	if res := inputval.Validate(in); res.HasErrors() {
		vm.SetValidation(res)
		templates.Render(w, r, "signup/index", vm)
		return
	}
	if in.Password != confirm {
		vm.SetError(MsgMismatch)
		vm.FieldErrors = map[string]string{"confirm_password": MsgMismatch}
		templates.Render(w, r, "signup/index", vm)
		return
	}
	if !vm.Terms {
		vm.SetError(MsgTerms)
		templates.Render(w, r, "signup/index", vm)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.logger, "signup")
	token, err := h.backend.Signup(ctx, backend.SignupRequest{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: confirm,
	})
	cancel()

	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			h.logger.Info("signup refused",
				zap.String("email", in.Email),
				zap.Int("status", statusErr.StatusCode))
			vm.SetError(MsgFailed)
		} else {
			h.errLog.Log(r, "signup request failed", err)
			vm.SetError(MsgUnavailable)
		}
		templates.Render(w, r, "signup/index", vm)
		return
	}

	name := in.FirstName + " " + in.LastName
	if err := h.sessionMgr.CreateSession(w, r, in.Email, name, token); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("signup succeeded", zap.String("email", in.Email))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
