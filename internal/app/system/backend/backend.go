// Package backend is the client for the remote tracking and auth API.
//
// The API is treated as a black box: a 2xx status means success, anything
// else is a *StatusError carrying the code and body, and a request that
// never produced a response is a *TransportError. Nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"go.uber.org/zap"
)

// API paths relative to the base URL.
const (
	SubmitPath = "/api/v1/track/submit"
	LoginPath  = "/api/v1/auth/login"
	SignupPath = "/api/v1/auth/signup"
)

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

// ErrNoToken is returned when an auth response succeeds without a token.
var ErrNoToken = errors.New("auth response did not include a token")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// TransportError is returned when the request could not be completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Result describes an accepted submission.
type Result struct {
	StatusCode int
	Body       json.RawMessage // response body when it was JSON, else nil
}

// SignupRequest is the body of a signup call.
type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client for baseURL. A zero timeout leaves the request
// context as the only deadline.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: missing host", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// SubmitPickup posts a complete pickup request. token, when not empty, is
// sent as a bearer token.
func (c *Client) SubmitPickup(ctx context.Context, token string, req models.PickupRequest) (*Result, error) {
	status, body, err := c.post(ctx, "submit pickup", SubmitPath, token, req)
	if err != nil {
		return nil, err
	}
	res := &Result{StatusCode: status}
	if json.Valid(body) {
		res.Body = json.RawMessage(body)
	}
	return res, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.token(ctx, "login", LoginPath, loginRequest{Email: email, Password: password})
}

// Signup registers an account and returns its token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	return c.token(ctx, "signup", SignupPath, req)
}

func (c *Client) token(ctx context.Context, op, p string, in any) (string, error) {
	_, body, err := c.post(ctx, op, p, "", in)
	if err != nil {
		return "", err
	}
	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// post sends in as JSON and returns the status and body of a 2xx response.
func (c *Client) post(ctx context.Context, op, p, token string, in any) (int, []byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, p)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("url", u.String()),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		c.logger.Warn("backend rejected request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", text),
			zap.Duration("took", time.Since(start)))
		return resp.StatusCode, nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: text}
	}

	c.logger.Debug("backend request ok",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))
	return resp.StatusCode, body, nil
}
