package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 5*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com", "not a url", "http://"} {
		if _, err := New(u, time.Second, zap.NewNop()); err == nil {
			t.Errorf("New(%q) expected error", u)
		}
	}
}

func TestSubmitPickup_Success(t *testing.T) {
	req := models.PickupRequest{
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Phone:      "555-0100",
		Address:    "12 Green St",
		City:       "Springfield",
		State:      "IL",
		Zip:        "62701",
		Items:      "2 laptops",
		Date:       "2025-03-10",
		TimeSlot:   "morning",
		PickupType: "residential",
	}

	var gotBody map[string]string
	var gotAuth, gotPath, gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})

	res, err := c.SubmitPickup(context.Background(), "tok-123", req)
	if err != nil {
		t.Fatalf("SubmitPickup() error = %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	if string(res.Body) != `{"id":"abc"}` {
		t.Errorf("Body = %s", res.Body)
	}
	if gotPath != SubmitPath {
		t.Errorf("path = %q, want %q", gotPath, SubmitPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}

	want := map[string]string{
		"name":       "Asha Rao",
		"email":      "asha@example.com",
		"phone":      "555-0100",
		"address":    "12 Green St",
		"city":       "Springfield",
		"state":      "IL",
		"zip":        "62701",
		"items":      "2 laptops",
		"date":       "2025-03-10",
		"timeSlot":   "morning",
		"pickupType": "residential",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitPickup_NoToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	res, err := c.SubmitPickup(context.Background(), "", models.PickupRequest{})
	if err != nil {
		t.Fatalf("SubmitPickup() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
	if res.Body != nil {
		t.Errorf("Body = %s, want nil for empty response", res.Body)
	}
}

func TestSubmitPickup_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slot full", http.StatusUnprocessableEntity)
	})

	_, err := c.SubmitPickup(context.Background(), "", models.PickupRequest{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("SubmitPickup() error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if se.Body != "slot full" {
		t.Errorf("Body = %q", se.Body)
	}
}

func TestSubmitPickup_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := New(srv.URL, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv.Close()

	_, err = c.SubmitPickup(context.Background(), "", models.PickupRequest{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("SubmitPickup() error = %v, want *TransportError", err)
	}
}

func TestSubmitPickup_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SubmitPickup(ctx, "", models.PickupRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SubmitPickup() error = %v, want context.Canceled", err)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != LoginPath {
			http.NotFound(w, r)
			return
		}
		var in loginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "asha@example.com" || in.Password != "secret" {
			http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"jwt-abc"}`))
	})

	token, err := c.Login(context.Background(), "asha@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "jwt-abc" {
		t.Errorf("token = %q, want %q", token, "jwt-abc")
	}

	_, err = c.Login(context.Background(), "asha@example.com", "wrong")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Errorf("Login(wrong) error = %v, want 401 StatusError", err)
	}
}

func TestLogin_NoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	if _, err := c.Login(context.Background(), "a@b.co", "x"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Login() error = %v, want ErrNoToken", err)
	}
}

func TestSignup(t *testing.T) {
	var got SignupRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != SignupPath {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"jwt-new"}`))
	})

	in := SignupRequest{
		FirstName:       "Asha",
		LastName:        "Rao",
		Email:           "asha@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	token, err := c.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if token != "jwt-new" {
		t.Errorf("token = %q", token)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("signup body mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseURLWithPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/prefix/", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.SubmitPickup(context.Background(), "", models.PickupRequest{}); err != nil {
		t.Fatalf("SubmitPickup() error = %v", err)
	}
	if gotPath != "/prefix"+SubmitPath {
		t.Errorf("path = %q, want %q", gotPath, "/prefix"+SubmitPath)
	}
}
