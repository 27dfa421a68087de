// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/store/ratelimit"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/formrelay"
	"github.com/dalemusser/ecorecycle/internal/app/system/indexes"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"github.com/dalemusser/ecorecycle/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// submitSlack is added to the backend timeout to decide when a draft's
// in-flight submission flag is stale.
const submitSlack = 30 * time.Second

// ConnectDB connects to MongoDB and builds the clients for the remote
// backend, the form relay and SMTP.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. A failed connection aborts startup and the process exits non-zero.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURL, appCfg.MongoDatabase, poolCfg)
	if err == nil {
		// The driver connects lazily; a ping proves the server is reachable.
		if err = client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
		}
	}
	if err != nil {
		logger.Error("DB connection failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("DB connection successful",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	remote, err := backend.New(appCfg.BackendURL, appCfg.BackendTimeout, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	relay := formrelay.New(formrelay.Config{
		URL:        appCfg.RelayURL,
		AccessKey:  appCfg.RelayAccessKey,
		TemplateID: appCfg.RelayTemplateID,
		Timeout:    appCfg.BackendTimeout,
	}, logger)

	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("load timezone %q: %w", appCfg.Timezone, err)
	}

	// Initialize email mailer
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	logger.Info("initialized email mailer",
		zap.Bool("enabled", mail.Enabled()),
		zap.String("host", appCfg.MailSMTPHost),
		zap.Int("port", appCfg.MailSMTPPort),
	)

	// Rate limiting for login attempts (nil if disabled)
	var limits *ratelimit.Store
	if appCfg.RateLimitEnabled {
		limits = ratelimit.New(db,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Drafts:        drafts.New(db, appCfg.BackendTimeout+submitSlack),
		Submissions:   submissions.New(db),
		RateLimits:    limits,
		Backend:       remote,
		Relay:         relay,
		Mailer:        mail,
		Calendar:      schedule.New(loc, appCfg.ClosedOnHolidays),
	}, nil
}

// EnsureSchema attaches collection validators, then creates indexes.
//
// The context has a timeout based on coreCfg.IndexBootTimeout, so long-running
// work should respect context cancellation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	// Ensure database indexes for query performance.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
