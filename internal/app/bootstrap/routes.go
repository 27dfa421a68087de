// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	contactfeature "github.com/dalemusser/ecorecycle/internal/app/features/contact"
	donatefeature "github.com/dalemusser/ecorecycle/internal/app/features/donate"
	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	healthfeature "github.com/dalemusser/ecorecycle/internal/app/features/health"
	homefeature "github.com/dalemusser/ecorecycle/internal/app/features/home"
	loginfeature "github.com/dalemusser/ecorecycle/internal/app/features/login"
	logoutfeature "github.com/dalemusser/ecorecycle/internal/app/features/logout"
	pagesfeature "github.com/dalemusser/ecorecycle/internal/app/features/pages"
	pickupfeature "github.com/dalemusser/ecorecycle/internal/app/features/pickup"
	signupfeature "github.com/dalemusser/ecorecycle/internal/app/features/signup"
	appresources "github.com/dalemusser/ecorecycle/internal/app/resources"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Every POST goes through CSRF protection. HTML forms carry the token in the
// csrf_token field; the pickup JSON API sends it in the X-CSRF-Token header,
// which site.js reads from the page's csrf-token meta tag.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Backend calls are bounded by BackendTimeout; leave room for the page render.
	r.Use(chimw.Timeout(appCfg.BackendTimeout + 10*time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Cookie name is "ecorecycle_csrf" to avoid collisions with other services
	// on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("ecorecycle_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// /static/* serves files from disk (static directory)
	r.Handle("/static/*", fileserver.Handler("/static", "static"))

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	pagesHandler := pagesfeature.NewHandler(logger)
	r.Mount("/about", pagesHandler.AboutRouter())
	r.Mount("/terms", pagesHandler.TermsRouter())
	r.Mount("/privacy", pagesHandler.PrivacyRouter())

	// Pickup wizard: HTML forms and the JSON API share one handler and one
	// draft per session.
	var mail mailer.Sender
	if deps.Mailer != nil && deps.Mailer.Enabled() {
		mail = deps.Mailer
	}
	pickupHandler := pickupfeature.NewHandler(
		deps.Drafts,
		deps.Submissions,
		deps.Backend,
		mail,
		deps.Calendar,
		sessionMgr,
		errLog,
		logger,
	)
	r.Mount("/pickup", pickupfeature.Routes(pickupHandler))
	r.Mount("/api/pickup", pickupfeature.APIRoutes(pickupHandler))

	// Form relay pages
	contactHandler := contactfeature.NewHandler(deps.Relay, deps.Submissions, errLog, logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	donateHandler := donatefeature.NewHandler(deps.Relay, deps.Submissions, donatefeature.Config{
		CCEmail:  appCfg.DonationCCEmail,
		UPIID:    appCfg.UPIID,
		Location: deps.Calendar.Location(),
	}, errLog, logger)
	r.Mount("/donate", donatefeature.Routes(donateHandler))

	// Account
	loginHandler := loginfeature.NewHandler(deps.Backend, deps.RateLimits, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(deps.Backend, sessionMgr, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, deps.Drafts, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
