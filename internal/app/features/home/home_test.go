package home

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/ecorecycle/internal/testutil"
	"go.uber.org/zap"
)

func TestRoutes(t *testing.T) {
	h := NewHandler(zap.NewNop())
	router := Routes(h)

	if router == nil {
		t.Fatal("Routes() returned nil")
	}
}

func TestIndex(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler(zap.NewNop())

	req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Recycle Your E-Waste for a Greener Future")
	rec.AssertContains(t, `href="/pickup"`)
	rec.AssertContains(t, "Data Security")
}

func TestIndex_SignedIn(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler(zap.NewNop())

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/", testutil.Visitor())
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Welcome back, Asha.")
}
