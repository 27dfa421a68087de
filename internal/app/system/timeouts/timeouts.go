// Package timeouts holds the deadlines handlers and jobs put on their work.
package timeouts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second  // health checks
	DefaultStore  = 5 * time.Second  // one draft or log read/write
	DefaultRemote = 20 * time.Second // backend and form relay calls
	DefaultBatch  = 60 * time.Second // cleanup jobs
)

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Store  time.Duration
	Remote time.Duration
	Batch  time.Duration
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Store: DefaultStore, Remote: DefaultRemote, Batch: DefaultBatch}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get().Ping }

// Store returns the timeout for a single database operation.
func Store() time.Duration { return get().Store }

// Remote returns the timeout for an outbound HTTP call.
func Remote() time.Duration { return get().Remote }

// Batch returns the timeout for bulk cleanup.
func Batch() time.Duration { return get().Batch }

func get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Configure sets the non-zero values of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		current.Ping = cfg.Ping
	}
	if cfg.Store > 0 {
		current.Store = cfg.Store
	}
	if cfg.Remote > 0 {
		current.Remote = cfg.Remote
	}
	if cfg.Batch > 0 {
		current.Batch = cfg.Batch
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// Current returns the timeout configuration in effect.
func Current() Config {
	return get()
}

// WithTimeout derives a context with timeout and logs when the deadline,
// rather than the parent, ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
