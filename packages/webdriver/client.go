package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/uispec/uispec/packages/browser"
)

// Client issues W3C WebDriver commands against a remote end.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds each wire command.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClientLogger attaches a logger for wire-level debug output.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given remote end, e.g.
// "http://localhost:9515" or "http://localhost:4444/wd/hub".
func NewClient(remoteURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(remoteURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireError is the error document a remote end returns inside the
// response value.
type wireError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace"`
}

func (e *wireError) Error() string {
	return fmt.Sprintf("webdriver: %s: %s", e.Code, e.Message)
}

// sentinel maps W3C error codes onto the browser package sentinels so
// callers can match with errors.Is.
func (e *wireError) sentinel() error {
	switch e.Code {
	case "no such element":
		return browser.ErrNoSuchElement
	case "stale element reference":
		return browser.ErrStaleElement
	case "invalid selector":
		return browser.ErrInvalidSelector
	case "timeout", "script timeout":
		return browser.ErrTimeout
	}
	return nil
}

// do issues one wire command and decodes the {"value": ...} envelope
// into out. A nil out discards the value.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("webdriver: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("webdriver: build %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webdriver: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("webdriver: read response for %s %s: %w", method, path, err)
	}

	c.logger.Debug("wire command",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return decodeError(method, path, raw)
	}

	if out == nil {
		return nil
	}
	envelope := struct {
		Value json.RawMessage `json:"value"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("webdriver: decode envelope for %s %s: %w", method, path, err)
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("webdriver: decode value for %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(method, path string, raw []byte) error {
	envelope := struct {
		Value wireError `json:"value"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Value.Code == "" {
		return fmt.Errorf("webdriver: %s %s failed: %s", method, path, bytes.TrimSpace(raw))
	}
	if sentinel := envelope.Value.sentinel(); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, envelope.Value.Message)
	}
	return &envelope.Value
}

// Status reports whether the remote end is ready to accept new
// sessions.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var status struct {
		Ready   bool   `json:"ready"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return false, err
	}
	return status.Ready, nil
}

// IsWireError reports whether err carries a remote-end error code.
func IsWireError(err error) bool {
	var we *wireError
	return errors.As(err, &we)
}
