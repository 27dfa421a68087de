// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// NavItem is a link in the site header.
type NavItem struct {
	Label string
	Href  string
}

// Nav is the header navigation, in display order.
var Nav = []NavItem{
	{Label: "Home", Href: "/"},
	{Label: "About", Href: "/about"},
	{Label: "Schedule Pickup", Href: "/pickup"},
	{Label: "Donate", Href: "/donate"},
	{Label: "Contact", Href: "/contact"},
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName   string
	FooterHTML template.HTML
	Year       int
	Nav        []NavItem

	// Visitor context (from the session middleware)
	IsLoggedIn bool
	UserEmail  string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF token for forms (use in hidden input field)
	CSRFToken string
}

// Site is the branding shared by every page.
type Site struct {
	Name       string
	FooterHTML string // sanitized before rendering
}

var (
	siteMu sync.RWMutex
	site   = Site{Name: models.DefaultSiteName, FooterHTML: models.DefaultFooterHTML}
)

// Init sets the site branding. Call once at startup from bootstrap;
// empty fields keep their defaults.
func Init(s Site) {
	siteMu.Lock()
	defer siteMu.Unlock()
	if s.Name != "" {
		site.Name = s.Name
	}
	if s.FooterHTML != "" {
		site.FooterHTML = s.FooterHTML
	}
}

// SiteName returns the configured site name.
func SiteName() string {
	siteMu.RLock()
	defer siteMu.RUnlock()
	return site.Name
}

// New creates a BaseVM for the request.
func New(r *http.Request) BaseVM {
	siteMu.RLock()
	s := site
	siteMu.RUnlock()

	vm := BaseVM{
		SiteName:    s.Name,
		FooterHTML:  htmlsanitize.SanitizeToHTML(s.FooterHTML),
		Year:        time.Now().Year(),
		Nav:         Nav,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserEmail = u.Email
		vm.UserName = u.DisplayName()
	}
	return vm
}

// NewBaseVM creates a BaseVM with a title and a back link.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

// IsActive reports whether href is the current section, for nav styling.
func (vm BaseVM) IsActive(href string) bool {
	if href == "/" {
		return vm.CurrentPath == "/"
	}
	return vm.CurrentPath == href || len(vm.CurrentPath) > len(href) && vm.CurrentPath[:len(href)+1] == href+"/"
}
