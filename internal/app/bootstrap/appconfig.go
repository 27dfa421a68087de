// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries the rest: MongoDB, the remote backend and form relay,
// sessions, the pickup calendar and retention of drafts and logs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURL         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: ecorecycle-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// Rate limiting configuration
	RateLimitEnabled       bool          // Enable rate limiting for login attempts (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Remote backend (pickup submission and auth)
	BackendURL     string
	BackendTimeout time.Duration

	// Form relay (contact and donation emails)
	RelayURL        string
	RelayAccessKey  string // blank disables contact and donate submissions
	RelayTemplateID string
	DonationCCEmail string
	UPIID           string // shown on the donate page when set

	// Email/SMTP configuration for pickup confirmations
	MailSMTPHost string // blank disables confirmation email
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	BaseURL  string
	SiteName string

	// Pickup calendar
	ClosedOnHolidays bool
	Timezone         string // IANA name; dates are chosen and checked in it

	// Retention
	DraftMaxAge         time.Duration // abandoned drafts are removed after this
	SubmissionRetention time.Duration // submission log entries are kept this long
}
