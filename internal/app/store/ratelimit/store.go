// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Attempt tracks failed sign-in attempts for one email address.
type Attempt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`         // lowercased
	AttemptCount int                `bson:"attempt_count"` // failures in the current window
	WindowStart  time.Time          `bson:"window_start"`
	LockedUntil  *time.Time         `bson:"locked_until"`
	LastAttempt  time.Time          `bson:"last_attempt"` // TTL field
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// Store limits failed sign-ins per email. Sign-in itself is done by the
// remote auth API; this only decides whether a request is forwarded.
type Store struct {
	c               *mongo.Collection
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

// New creates a rate limit Store.
func New(db *mongo.Database, maxAttempts int, window, lockout time.Duration) *Store {
	return &Store{
		c:               db.Collection("rate_limits"),
		maxAttempts:     maxAttempts,
		windowDuration:  window,
		lockoutDuration: lockout,
		now:             time.Now,
	}
}

// EnsureIndexes creates the lookup index and the 24h TTL on last_attempt.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_ratelimit_email"),
		},
		{
			Keys:    bson.D{{Key: "last_attempt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_ratelimit_ttl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckAllowed reports whether a sign-in for email may be forwarded.
// remaining is -1 while locked. Lookup errors fail open.
func (s *Store) CheckAllowed(ctx context.Context, email string) (allowed bool, remaining int, lockedUntil *time.Time) {
	a, err := s.GetAttempt(ctx, email)
	if err != nil || a == nil {
		return true, s.maxAttempts, nil
	}

	now := s.now()
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return false, -1, a.LockedUntil
	}
	if s.windowExpired(a, now) {
		return true, s.maxAttempts, nil
	}

	remaining = s.maxAttempts - a.AttemptCount
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordFailure counts a failed sign-in and locks the email once the
// limit is reached within the window.
func (s *Store) RecordFailure(ctx context.Context, email string) (lockedOut bool, lockedUntil *time.Time) {
	email = normalizeEmail(email)
	now := s.now()

	a, err := s.GetAttempt(ctx, email)
	if err != nil {
		return false, nil
	}

	if a == nil {
		a = &Attempt{ID: primitive.NewObjectID(), Email: email, WindowStart: now, CreatedAt: now}
	}
	if s.windowExpired(a, now) {
		a.AttemptCount = 0
		a.WindowStart = now
		a.LockedUntil = nil
	}
	a.AttemptCount++
	a.LastAttempt = now
	a.UpdatedAt = now

	if a.AttemptCount >= s.maxAttempts {
		until := now.Add(s.lockoutDuration)
		a.LockedUntil = &until
		lockedOut, lockedUntil = true, &until
	}

	_, _ = s.c.ReplaceOne(ctx, bson.M{"email": email}, a, options.Replace().SetUpsert(true))
	return lockedOut, lockedUntil
}

// ClearOnSuccess forgets the failures for email after a successful sign-in.
func (s *Store) ClearOnSuccess(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"email": normalizeEmail(email)})
	return err
}

// GetAttempt returns the record for email, or nil when there is none.
func (s *Store) GetAttempt(ctx context.Context, email string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) windowExpired(a *Attempt, now time.Time) bool {
	return now.After(a.WindowStart.Add(s.windowDuration))
}
