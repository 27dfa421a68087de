// internal/app/store/submissions/submissionstore.go
package submissions

import (
	"context"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/store/storeutil"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the outbound submission log.
type Store struct {
	c *mongo.Collection
}

// New creates a submission Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

// EnsureIndexes creates indexes for listing and cleanup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_submission_kind_created"),
		},
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetName("idx_submission_reference"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_submission_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record inserts one attempt and returns its id.
func (s *Store) Record(ctx context.Context, sub models.Submission) (primitive.ObjectID, error) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return primitive.NilObjectID, err
	}
	return sub.ID, nil
}

// ListRecent returns attempts newest first. An empty kind lists all kinds.
func (s *Store) ListRecent(ctx context.Context, kind string, limit, page int64) ([]models.Submission, error) {
	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}
	opts := storeutil.NewestFirst(limit, page)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByReference returns the attempts recorded for a draft id or receipt id.
func (s *Store) ByReference(ctx context.Context, ref string) ([]models.Submission, error) {
	cur, err := s.c.Find(ctx, bson.M{"reference": ref},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes attempts created before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
