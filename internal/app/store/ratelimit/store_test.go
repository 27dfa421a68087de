package ratelimit

import (
	"testing"
	"time"

	"github.com/dalemusser/ecorecycle/internal/testutil"
)

func newStore(t *testing.T, max int) *Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return New(db, max, 15*time.Minute, 30*time.Minute)
}

func TestStore_EnsureIndexes(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() second call error = %v", err)
	}
}

func TestStore_CheckAllowed_NoRecord(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, "new@example.com")
	if !allowed || remaining != 5 || lockedUntil != nil {
		t.Errorf("CheckAllowed() = (%v, %d, %v), want (true, 5, nil)", allowed, remaining, lockedUntil)
	}
}

func TestStore_CaseInsensitive(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "asha@example.com")

	_, remaining, _ := store.CheckAllowed(ctx, "  ASHA@Example.COM ")
	if remaining != 4 {
		t.Errorf("CheckAllowed() remaining = %d, want 4", remaining)
	}
}

func TestStore_RecordFailure_Counts(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "count@example.com"
	for i := 1; i <= 3; i++ {
		if locked, _ := store.RecordFailure(ctx, email); locked {
			t.Fatalf("RecordFailure() #%d locked out early", i)
		}
	}

	allowed, remaining, _ := store.CheckAllowed(ctx, email)
	if !allowed || remaining != 2 {
		t.Errorf("CheckAllowed() = (%v, %d), want (true, 2)", allowed, remaining)
	}

	a, err := store.GetAttempt(ctx, email)
	if err != nil || a == nil {
		t.Fatalf("GetAttempt() = %v, %v", a, err)
	}
	if a.AttemptCount != 3 || a.Email != email {
		t.Errorf("GetAttempt() = %+v", a)
	}
}

func TestStore_Lockout(t *testing.T) {
	store := newStore(t, 3)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "lock@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)

	lockedOut, lockedUntil := store.RecordFailure(ctx, email)
	if !lockedOut || lockedUntil == nil {
		t.Fatalf("RecordFailure() = (%v, %v), want lockout", lockedOut, lockedUntil)
	}
	if lockedUntil.Before(time.Now().Add(29 * time.Minute)) {
		t.Errorf("lockedUntil = %v, want ~30m ahead", lockedUntil)
	}

	allowed, remaining, until := store.CheckAllowed(ctx, email)
	if allowed || remaining != -1 || until == nil {
		t.Errorf("CheckAllowed() = (%v, %d, %v), want locked", allowed, remaining, until)
	}
}

func TestStore_LockoutExpires(t *testing.T) {
	store := newStore(t, 2)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	store.now = func() time.Time { return now }

	email := "expire@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)
	if allowed, _, _ := store.CheckAllowed(ctx, email); allowed {
		t.Fatal("CheckAllowed() should be false right after lockout")
	}

	store.now = func() time.Time { return now.Add(31 * time.Minute) }
	allowed, remaining, _ := store.CheckAllowed(ctx, email)
	if !allowed || remaining != 2 {
		t.Errorf("CheckAllowed() after lockout = (%v, %d), want (true, 2)", allowed, remaining)
	}
}

func TestStore_WindowExpiryResetsCount(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	store.now = func() time.Time { return now }

	email := "window@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)

	store.now = func() time.Time { return now.Add(16 * time.Minute) }
	if _, remaining, _ := store.CheckAllowed(ctx, email); remaining != 5 {
		t.Errorf("CheckAllowed() remaining = %d, want 5", remaining)
	}

	store.RecordFailure(ctx, email)
	a, _ := store.GetAttempt(ctx, email)
	if a == nil || a.AttemptCount != 1 {
		t.Errorf("AttemptCount after new window = %+v, want 1", a)
	}
}

func TestStore_ClearOnSuccess(t *testing.T) {
	store := newStore(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "clear@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)

	if err := store.ClearOnSuccess(ctx, "Clear@Example.com"); err != nil {
		t.Fatalf("ClearOnSuccess() error = %v", err)
	}
	a, err := store.GetAttempt(ctx, email)
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if a != nil {
		t.Errorf("GetAttempt() after clear = %+v, want nil", a)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Test@Example.COM", "test@example.com"},
		{"  user@test.com  ", "user@test.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeEmail(tt.input); got != tt.want {
				t.Errorf("normalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
