package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	if Remote() != DefaultRemote {
		t.Fatalf("Remote() = %v, want default %v", Remote(), DefaultRemote)
	}

	Configure(Config{Remote: 3 * time.Second, Store: -1})
	if Remote() != 3*time.Second {
		t.Errorf("Remote() = %v, want 3s", Remote())
	}
	if Store() != DefaultStore {
		t.Errorf("Store() = %v, negative value should be ignored", Store())
	}
	if Ping() != DefaultPing || Batch() != DefaultBatch {
		t.Errorf("Current() = %+v, untouched values changed", Current())
	}

	Reset()
	if Remote() != DefaultRemote {
		t.Errorf("Remote() after Reset = %v", Remote())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, logger, "relay")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "operation timed out" || entry.ContextMap()["operation"] != "relay" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestWithTimeout_ParentCancelledNotLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := WithTimeout(parent, time.Hour, logger, "store")
	cancelParent()
	<-ctx.Done()
	cancel()

	if logs.Len() != 0 {
		t.Errorf("logged %d entries, want 0", logs.Len())
	}
}
