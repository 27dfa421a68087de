// internal/app/features/pages/pages.go
package pages

import (
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides the static content pages.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// Section is a headed block of page text.
type Section struct {
	Heading    string
	Paragraphs []string
}

// Person is a team member shown on the about page.
type Person struct {
	Name string
	Role string
	Bio  string
}

// Page is the content of one static page.
type Page struct {
	Slug     string
	Headline string
	Intro    string
	Sections []Section
	Values   []Section // about only
	Team     []Person  // about only
}

// PageVM is the view model for page content.
type PageVM struct {
	viewdata.BaseVM
	Page
}

// AboutRouter returns a router for the about page.
func (h *Handler) AboutRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage(About, "pages/about"))
	return r
}

// TermsRouter returns a router for the terms page.
func (h *Handler) TermsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage(Terms, "pages/show"))
	return r
}

// PrivacyRouter returns a router for the privacy page.
func (h *Handler) PrivacyRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage(Privacy, "pages/show"))
	return r
}

// showPage returns a handler that renders page with the named template.
func (h *Handler) showPage(page Page, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vm := PageVM{
			BaseVM: viewdata.New(r),
			Page:   page,
		}
		vm.Title = page.Headline

		templates.Render(w, r, name, vm)
	}
}
