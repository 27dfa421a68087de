// internal/app/store/drafts/draftstore.go
package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one wizard state per browser session.
const Collection = "pickup_drafts"

// DraftTTL is how long an untouched draft is kept.
const DraftTTL = 7 * 24 * time.Hour

var (
	// ErrNotFound is returned when no draft has the given id.
	ErrNotFound = errors.New("draft not found")
	// ErrLocked is returned when a submission for the draft is in flight
	// or the draft changed step under the caller.
	ErrLocked = errors.New("draft is being submitted")
)

// Store persists wizard drafts.
//
// Writes through Save are refused while the stored state is marked as
// submitting, which is how concurrent submits and step changes for one
// draft are serialized. A submitting mark older than staleAfter is
// ignored so a crashed request cannot wedge a draft.
type Store struct {
	c          *mongo.Collection
	staleAfter time.Duration
}

// New creates a draft Store.
func New(db *mongo.Database, staleAfter time.Duration) *Store {
	return &Store{c: db.Collection(Collection), staleAfter: staleAfter}
}

// EnsureIndexes creates the TTL index on updated_at.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(DraftTTL / time.Second)).SetName("idx_draft_ttl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create stores state under a new id and returns the id.
func (s *Store) Create(ctx context.Context, state models.PickupState) (string, error) {
	now := time.Now().UTC()
	d := models.PickupDraft{
		ID:        uuid.NewString(),
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// Get returns the state stored under id. A stale submitting mark is
// cleared in the returned value.
func (s *Store) Get(ctx context.Context, id string) (models.PickupState, error) {
	var d models.PickupDraft
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PickupState{}, ErrNotFound
	}
	if err != nil {
		return models.PickupState{}, err
	}
	if d.State.Submitting && s.isStale(d.State.SubmittingSince) {
		d.State.Submitting = false
		d.State.SubmittingSince = nil
	}
	return d.State, nil
}

// Save replaces the stored state when it is still on step from and no
// submission is in flight. Saving a state that is itself marked
// submitting acquires the lock. A draft that moved to another step since
// it was loaded is reported as ErrLocked, so a slow request cannot undo a
// finished submission.
func (s *Store) Save(ctx context.Context, id string, from int, state models.PickupState) error {
	filter := bson.M{
		"_id":        id,
		"state.step": from,
		"$or": bson.A{
			bson.M{"state.submitting": false},
			bson.M{"state.submitting_since": nil},
			bson.M{"state.submitting_since": bson.M{"$lt": time.Now().UTC().Add(-s.staleAfter)}},
		},
	}
	res, err := s.c.UpdateOne(ctx, filter, setState(state))
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrLocked
}

// Release stores the state that ends a submission, regardless of the
// lock. Only the request that acquired the lock calls it.
func (s *Store) Release(ctx context.Context, id string, state models.PickupState) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, setState(state))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteStale removes drafts not updated since before.
func (s *Store) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) isStale(since *time.Time) bool {
	if since == nil {
		return true
	}
	return time.Since(*since) > s.staleAfter
}

func setState(state models.PickupState) bson.M {
	return bson.M{"$set": bson.M{
		"state":      state,
		"updated_at": time.Now().UTC(),
	}}
}
