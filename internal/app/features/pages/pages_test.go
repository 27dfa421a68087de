package pages

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/ecorecycle/internal/testutil"
	"go.uber.org/zap"
)

func TestPages(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler(zap.NewNop())

	tests := []struct {
		name   string
		router http.Handler
		want   []string
	}{
		{"about", h.AboutRouter(), []string{"About EcoRecycle", "How We Started", "Sarah Johnson", "Transparency"}},
		{"terms", h.TermsRouter(), []string{"Terms of Service", "Pickups"}},
		{"privacy", h.PrivacyRouter(), []string{"Privacy Policy", "What we collect"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil))
			rec := testutil.NewRecorder()
			tt.router.ServeHTTP(rec, req)

			rec.AssertStatus(t, http.StatusOK)
			for _, s := range tt.want {
				rec.AssertContains(t, s)
			}
		})
	}
}

func TestPages_MethodNotAllowed(t *testing.T) {
	h := NewHandler(zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.AboutRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
