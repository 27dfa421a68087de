// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/system/network"
	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with the request they happened on.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs err at error level with the request path, method and client
// address, followed by any extra fields.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, fields ...zap.Field) {
	all := make([]zap.Field, 0, 4+len(fields))
	all = append(all,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", network.GetClientIP(r)),
	)
	e.logger.Error(msg, append(all, fields...)...)
}

// Handler renders the error pages.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

func render(w http.ResponseWriter, r *http.Request, status int, title, name string) {
	vm := viewdata.New(r)
	vm.Title = title

	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}

// Forbidden renders the 403 page. Failed CSRF checks land here.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "Access Denied", "errors/forbidden")
}

// Unauthorized renders the 401 page.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusUnauthorized, "Please Log In", "errors/unauthorized")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "Page Not Found", "errors/not_found")
}

// InternalError renders the 500 page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusInternalServerError, "Something Went Wrong", "errors/internal")
}
