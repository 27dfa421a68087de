// Package formrelay posts form submissions to a hosted form relay
// (web3forms) which forwards them by email.
package formrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultURL is the relay's submit endpoint.
const DefaultURL = "https://api.web3forms.com/submit"

// ErrNoAccessKey is returned by Submit when no access key is configured.
var ErrNoAccessKey = errors.New("form relay access key is not configured")

// Response is the relay's reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RejectedError is returned when the relay answers but does not accept the
// submission (non-2xx, or success=false).
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("form relay rejected submission (%d)", e.StatusCode)
	}
	return fmt.Sprintf("form relay rejected submission (%d): %s", e.StatusCode, e.Message)
}

// Attachment is a file carried inline, base64 encoded.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// Client submits to the relay.
type Client struct {
	url        string
	accessKey  string
	templateID string
	http       *http.Client
	logger     *zap.Logger
}

// Config holds the settings for a Client.
type Config struct {
	URL        string // defaults to DefaultURL
	AccessKey  string
	TemplateID string // optional relay email template
	Timeout    time.Duration
}

// New creates a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		u = DefaultURL
	}
	return &Client{
		url:        u,
		accessKey:  cfg.AccessKey,
		templateID: cfg.TemplateID,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// TemplateID returns the configured template id, which callers add to
// submissions that should use it.
func (c *Client) TemplateID() string {
	return c.templateID
}

// Submit posts fields plus the access key. Network failures are returned
// as-is (wrapped); relay refusals as *RejectedError.
func (c *Client) Submit(ctx context.Context, fields map[string]any) (*Response, error) {
	if c.accessKey == "" {
		return nil, ErrNoAccessKey
	}

	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["access_key"] = c.accessKey

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("form relay request failed", zap.Error(err))
		return nil, fmt.Errorf("form relay request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}

	var out Response
	if jerr := json.Unmarshal(raw, &out); jerr != nil {
		out.Message = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		c.logger.Warn("form relay rejected submission",
			zap.Int("status", resp.StatusCode),
			zap.String("message", out.Message))
		return &out, &RejectedError{StatusCode: resp.StatusCode, Message: out.Message}
	}

	return &out, nil
}
