package pickup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/auth"
	"github.com/dalemusser/ecorecycle/internal/app/system/backend"
	"github.com/dalemusser/ecorecycle/internal/app/system/mailer"
	"github.com/dalemusser/ecorecycle/internal/app/system/schedule"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/ecorecycle/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSessionKey = "this-is-a-32-character-long-key!"

// stubBackend records pickup submissions and answers with status.
type stubBackend struct {
	mu      sync.Mutex
	status  int
	got     []models.PickupRequest
	auth    []string
	arrived chan struct{} // signalled when a request comes in, if set
	hold    chan struct{} // requests wait for it to close, if set
}

func (s *stubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.PickupRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.got = append(s.got, req)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	status, arrived, hold := s.status, s.arrived, s.hold
	s.mu.Unlock()

	if arrived != nil {
		arrived <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *stubBackend) setStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *stubBackend) received() []models.PickupRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PickupRequest(nil), s.got...)
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (f *fakeMail) Send(e mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeMail) emails() []mailer.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Email(nil), f.sent...)
}

type testEnv struct {
	h       *Handler
	db      *mongo.Database
	cal     *schedule.Calendar
	backend *stubBackend
	server  *httptest.Server
	mail    *fakeMail
	browser *browser
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testutil.MustBootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	stub := &stubBackend{status: http.StatusOK}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.URL, 5*time.Second, logger)
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	sm, err := auth.NewSessionManager(testSessionKey, "", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	cal := schedule.New(time.UTC, false)
	mail := &fakeMail{}
	h := NewHandler(
		drafts.New(db, time.Minute),
		submissions.New(db),
		client,
		mail,
		cal,
		sm,
		errorsfeature.NewErrorLogger(logger),
		logger,
	)

	r := chi.NewRouter()
	r.Mount("/pickup", Routes(h))
	r.Mount("/api/pickup", APIRoutes(h))

	return &testEnv{
		h:       h,
		db:      db,
		cal:     cal,
		backend: stub,
		server:  srv,
		mail:    mail,
		browser: &browser{handler: r, cookies: map[string]*http.Cookie{}},
	}
}

// openDate returns a bookable date a few open days out.
func (e *testEnv) openDate() string {
	return schedule.FormatDate(e.cal.NextOpenDays(time.Now(), 3)[2])
}

// browser keeps the session cookie between requests.
type browser struct {
	handler http.Handler
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

// prepare adds the stored cookies and a CSRF token to req.
func (b *browser) prepare(req *http.Request) *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	return testutil.WithCSRFToken(req)
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, b.prepare(req))

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(testutil.NewFormRequest(target, form))
}

func (b *browser) postJSON(target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

// state fetches the wizard state through the JSON API.
func (b *browser) state(t *testing.T) StateResponse {
	t.Helper()
	rec := b.get("/api/pickup")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/pickup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decodeState(t, rec)
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	var s StateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode state: %v (body %s)", err, rec.Body.String())
	}
	return s
}

func contactForm() url.Values {
	return url.Values{
		"name":       {"Asha Rao"},
		"email":      {"asha@example.com"},
		"phone":      {"555-0100"},
		"address":    {"12 Green St"},
		"city":       {"Pune"},
		"state":      {"MH"},
		"zip":        {"411001"},
		"pickupType": {"residential"},
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %s)", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("Location = %q, want %q", loc, want)
	}
}
