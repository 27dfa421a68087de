package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		path       string
		wantStatus int
		wantType   string
	}{
		{"/assets/js/site.js", http.StatusOK, "javascript"},
		{"/assets/css/site.css", http.StatusOK, "text/css"},
		{"/assets/js/missing.js", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Cache-Control"); got != "public, max-age="+AssetsMaxAge {
				t.Errorf("Cache-Control = %q", got)
			}
		})
	}
}
