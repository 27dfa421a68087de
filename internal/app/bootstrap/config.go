// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/system/formrelay"
	"github.com/dalemusser/ecorecycle/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "ECORECYCLE"

// FallbackMongoEnv is read when mongo_url is left at its default.
const FallbackMongoEnv = "MONGO_URL"

const defaultMongoURL = "mongodb://localhost:27017"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_url, backend_url, etc.
//   - Environment variables: ECORECYCLE_MONGO_URL, ECORECYCLE_BACKEND_URL, etc.
//   - Command-line flags: --mongo_url, --backend_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_url", Default: defaultMongoURL, Desc: "MongoDB connection URL (bare MONGO_URL is used when this is not set)"},
	{Name: "mongo_database", Default: "ecorecycle", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ecorecycle-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login attempts"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed login attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Remote backend
	{Name: "backend_url", Default: "https://e-waste-cl3k.onrender.com", Desc: "Base URL of the pickup and auth backend"},
	{Name: "backend_timeout", Default: "20s", Desc: "Timeout for one backend or relay call"},

	// Form relay
	{Name: "relay_url", Default: formrelay.DefaultURL, Desc: "Form relay submit endpoint"},
	{Name: "relay_access_key", Default: "", Desc: "Form relay access key (contact and donate are disabled without it)"},
	{Name: "relay_template_id", Default: "", Desc: "Form relay email template for donations"},
	{Name: "donation_cc_email", Default: "", Desc: "Address copied on every donation email"},
	{Name: "upi_id", Default: "", Desc: "UPI id shown on the donate page"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables confirmation email)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@example.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "EcoRecycle", Desc: "From display name"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL of the site"},
	{Name: "site_name", Default: "EcoRecycle", Desc: "Site name shown in pages and email"},

	// Pickup calendar
	{Name: "closed_on_holidays", Default: true, Desc: "Refuse pickups on US federal holidays"},
	{Name: "timezone", Default: "America/New_York", Desc: "Time zone pickup dates are checked in"},

	// Retention
	{Name: "draft_max_age", Default: "72h", Desc: "Remove pickup drafts idle for longer than this"},
	{Name: "submission_retention", Default: "2160h", Desc: "Keep submission log entries this long"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ECORECYCLE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURL:         appValues.String("mongo_url"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		CSRFKey: appValues.String("csrf_key"),

		// Remote backend
		BackendURL:     appValues.String("backend_url"),
		BackendTimeout: appValues.Duration("backend_timeout", 20*time.Second),

		// Form relay
		RelayURL:        appValues.String("relay_url"),
		RelayAccessKey:  appValues.String("relay_access_key"),
		RelayTemplateID: appValues.String("relay_template_id"),
		DonationCCEmail: appValues.String("donation_cc_email"),
		UPIID:           appValues.String("upi_id"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		// Pickup calendar
		ClosedOnHolidays: appValues.Bool("closed_on_holidays"),
		Timezone:         appValues.String("timezone"),

		// Retention
		DraftMaxAge:         appValues.Duration("draft_max_age", 72*time.Hour),
		SubmissionRetention: appValues.Duration("submission_retention", 90*24*time.Hour),
	}

	appCfg.MongoURL = mongoURL(appCfg.MongoURL, os.Getenv(FallbackMongoEnv))

	return coreCfg, appCfg, nil
}

// mongoURL returns fallback when configured is still the default.
func mongoURL(configured, fallback string) string {
	if (configured == "" || configured == defaultMongoURL) && fallback != "" {
		return fallback
	}
	return configured
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURL); err != nil {
		logger.Error("invalid MongoDB URL", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URL: %w", err)
	}

	var problems []error
	if !inputval.IsValidHTTPURL(appCfg.BackendURL) {
		problems = append(problems, fmt.Errorf("backend_url %q must be an http(s) URL", appCfg.BackendURL))
	}
	if !inputval.IsValidHTTPURL(appCfg.RelayURL) {
		problems = append(problems, fmt.Errorf("relay_url %q must be an http(s) URL", appCfg.RelayURL))
	}
	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		problems = append(problems, fmt.Errorf("timezone %q: %w", appCfg.Timezone, err))
	}
	if appCfg.BackendTimeout <= 0 {
		problems = append(problems, errors.New("backend_timeout must be positive"))
	}
	if appCfg.RateLimitEnabled && appCfg.RateLimitLoginAttempts < 1 {
		problems = append(problems, errors.New("rate_limit_login_attempts must be at least 1"))
	}
	if err := errors.Join(problems...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}

	if appCfg.RelayAccessKey == "" {
		logger.Warn("relay_access_key is not set; contact and donate forms will not send")
	}
	if appCfg.MailSMTPHost == "" {
		logger.Info("mail_smtp_host is not set; pickup confirmation email is disabled")
	}
	return nil
}
