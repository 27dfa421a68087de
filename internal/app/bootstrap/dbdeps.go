// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/store/ratelimit"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/formrelay"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook closes the MongoDB client.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Stores over MongoDB
	Drafts      *drafts.Store
	Submissions *submissions.Store
	RateLimits  *ratelimit.Store // nil if rate limiting disabled

	// Remote collaborators
	Backend *backend.Client
	Relay   *formrelay.Client

	// Mailer for pickup confirmations
	Mailer *mailer.Mailer

	// Calendar of closed pickup days
	Calendar *schedule.Calendar
}
