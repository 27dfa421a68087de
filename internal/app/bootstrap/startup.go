// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/ecorecycle/internal/app/resources"
	"github.com/dalemusser/ecorecycle/internal/app/system/tasks"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/ecorecycle/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	viewdata.Init(viewdata.Site{Name: appCfg.SiteName})

	timeouts.Configure(timeouts.Config{Remote: appCfg.BackendTimeout})
	logger.Info("timeouts configured", zap.Any("timeouts", timeouts.Current()))

	// Note: Indexes are created in EnsureSchema via indexes.EnsureAll().

	// Start background task runner
	startTaskRunner(deps, appCfg, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(deps DBDeps, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Register cleanup jobs
	taskRunner.Register(tasks.DraftCleanupJob(deps.Drafts, appCfg.DraftMaxAge, logger))
	taskRunner.Register(tasks.SubmissionLogCleanupJob(deps.Submissions, appCfg.SubmissionRetention, logger))

	// Start running jobs
	taskRunner.Start()
}
