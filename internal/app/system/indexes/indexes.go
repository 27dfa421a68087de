// Package indexes creates the MongoDB indexes for drafts, the submission
// log and login rate limits.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	PickupDrafts = "pickup_drafts"
	Submissions  = "submissions"
	RateLimits   = "rate_limits"
)

// DraftTTL is how long an untouched pickup draft survives in MongoDB.
const DraftTTL = 7 * 24 * time.Hour

// Index names and keys match the stores' own EnsureIndexes so either may
// run first.
func wanted() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		PickupDrafts: {
			{
				Keys:    bson.D{{Key: "updated_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32(DraftTTL.Seconds())).SetName("idx_draft_ttl"),
			},
		},
		Submissions: {
			// recent attempts by kind
			{
				Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_submission_kind_created"),
			},
			// every attempt for one draft or receipt
			{
				Keys:    bson.D{{Key: "reference", Value: 1}},
				Options: options.Index().SetName("idx_submission_reference"),
			},
			// retention cleanup
			{
				Keys:    bson.D{{Key: "created_at", Value: 1}},
				Options: options.Index().SetName("idx_submission_created"),
			},
		},
		RateLimits: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_ratelimit_email"),
			},
			// failed attempts are forgotten after a day
			{
				Keys:    bson.D{{Key: "last_attempt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_ratelimit_ttl"),
			},
		},
	}
}

// EnsureAll is called at startup and is idempotent. Problems in every
// collection are collected so startup fails with the full list.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []error
	for _, name := range []string{PickupDrafts, Submissions, RateLimits} {
		if err := ensure(ctx, db.Collection(name), wanted()[name]); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(problems...)
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// existing maps key signatures to the collection's indexes. A failed
// listing yields an empty map and every index is created.
func existing(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// ensure creates the missing indexes of coll. An index whose keys exist
// with a different uniqueness is dropped and recreated.
func ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	have := existing(ctx, coll)
	var errs []error

	for _, m := range models {
		name := *m.Options.Name
		unique := m.Options.Unique != nil && *m.Options.Unique
		sig := keySig(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
		)
		start := time.Now()

		if ex, ok := have[sig]; ok {
			if ex.Unique == unique {
				log.Debug("index already present", zap.String("existing_name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s: drop %s: %w", name, ex.Name, err))
				continue
			}
			log.Info("dropped index with different options", zap.String("existing_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && mongo.IsDuplicateKeyError(err) {
				err = errors.New("cannot create unique index, duplicates present")
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	return errors.Join(errs...)
}
