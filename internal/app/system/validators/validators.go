// Package validators creates the app's collections and attaches JSON-Schema
// validators to them.
package validators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/ecorecycle/internal/app/system/indexes"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates missing collections and attaches their validators.
// Servers without collMod support (some DocumentDB versions) keep the
// collections unvalidated.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	collections := []struct {
		name   string
		schema bson.M
	}{
		{indexes.PickupDrafts, pickupDraftsSchema()},
		{indexes.Submissions, submissionsSchema()},
		{indexes.RateLimits, nil},
	}

	var problems []error
	for _, c := range collections {
		if _, err := ensureCollection(ctx, db, c.name); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(problems...)
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// ensureCollection reports created=true only when this call created name.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		return false, nil
	}
	// Listing failed or raced with another instance; creating tells us which.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// commandFailed matches err by server error code or, for servers that use
// other codes, by message text.
func commandFailed(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandFailed(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandFailed(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandFailed(err, 115, "not implemented", "not supported")
}

var intTypes = bson.A{"int", "long"}

func pickupDraftsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "state", "created_at", "updated_at"},
			"properties": bson.M{
				"_id": bson.M{"bsonType": "string", "minLength": 1},
				"state": bson.M{
					"bsonType": "object",
					"required": bson.A{"step", "draft", "submitting"},
					"properties": bson.M{
						"step":             bson.M{"bsonType": intTypes, "minimum": 1, "maximum": 4},
						"draft":            bson.M{"bsonType": "object"},
						"submitting":       bson.M{"bsonType": "bool"},
						"submitting_since": bson.M{"bsonType": bson.A{"date", "null"}},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func submissionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "status", "created_at"},
			"properties": bson.M{
				"kind":        bson.M{"enum": bson.A{models.SubmissionPickup, models.SubmissionContact, models.SubmissionDonation}},
				"status":      bson.M{"enum": bson.A{models.SubmissionSent, models.SubmissionRejected, models.SubmissionFailed}},
				"reference":   bson.M{"bsonType": "string"},
				"email":       bson.M{"bsonType": "string"},
				"payload":     bson.M{"bsonType": "object"},
				"http_status": bson.M{"bsonType": intTypes},
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}
