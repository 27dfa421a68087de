package testutil

import (
	"sync"

	"github.com/dalemusser/ecorecycle/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// MustBootTemplates boots the template engine once per test binary with the
// shared layout plus every feature set registered so far. Feature packages
// register their own templates from init, so a feature's tests see its pages.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()

		eng := templates.New(false)
		if bootErr = eng.Boot(zap.NewNop()); bootErr != nil {
			return
		}
		templates.UseEngine(eng, zap.NewNop())
	})
	if bootErr != nil {
		t.Fatalf("failed to boot templates: %v", bootErr)
	}
}
