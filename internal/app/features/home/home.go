// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides home page handlers.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// Block is a titled paragraph on the landing page.
type Block struct {
	Title string
	Body  string
}

// HomeVM is the view model for the home page.
type HomeVM struct {
	viewdata.BaseVM
	Steps           []Block
	Features        []Block
	AcceptableItems []string
	SignedIn        bool
}

// Steps explains the pickup process.
var Steps = []Block{
	{Title: "Schedule", Body: "Book a convenient pickup time through our easy-to-use online form."},
	{Title: "Collection", Body: "Our team arrives at your location to collect your e-waste items."},
	{Title: "Recycling", Body: "We responsibly recycle your e-waste, ensuring materials are properly processed."},
}

// Features lists the selling points.
var Features = []Block{
	{Title: "Eco-Friendly", Body: "Our recycling processes adhere to the highest environmental standards, minimizing the impact on our planet."},
	{Title: "Free Pickup", Body: "We offer free pickup services for your convenience, making it easier to recycle your e-waste."},
	{Title: "Impact Tracking", Body: "Track the positive environmental impact of your recycling efforts with our detailed reports."},
	{Title: "Certified Process", Body: "Our recycling processes are certified by leading environmental organizations, ensuring proper handling."},
	{Title: "Convenient Scheduling", Body: "Choose a pickup time that works for you with our flexible scheduling system."},
	{Title: "Data Security", Body: "We ensure complete data destruction for all devices, protecting your privacy and security."},
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the home page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vm := HomeVM{
		BaseVM:          viewdata.New(r),
		Steps:           Steps,
		Features:        Features,
		AcceptableItems: models.AcceptableItems,
	}
	vm.Title = "Home"
	vm.SignedIn = vm.IsLoggedIn

	templates.Render(w, r, "home/index", vm)
}
