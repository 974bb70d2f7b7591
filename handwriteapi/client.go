// Package handwriteapi is the HTTP client for the handwriting generation
// service: the font catalog endpoint and the generate endpoint.
package handwriteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"handwrite/core"
	"handwrite/logging"
)

const (
	FontsPath    = "/api/v1/fonts"
	GeneratePath = "/api/v1/generate"

	// HeaderRequestID carries the correlation id of every request.
	HeaderRequestID = "X-Request-ID"

	// maxResponseBytes caps a response body; a many-page render is large.
	maxResponseBytes = 512 << 20
)

// Client talks to one generation service. At most one generate request is in
// flight per Client; ListFonts is not restricted.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	logger          *logging.Logger
	newRequestID    func() string
	fontsTimeout    time.Duration
	generateTimeout time.Duration

	inFlight atomic.Bool
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDFunc overrides how correlation ids are minted.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

// WithTimeouts bounds each call with its own deadline. Zero leaves a call
// bounded only by its context and the HTTP client.
func WithTimeouts(fonts, generate time.Duration) Option {
	return func(c *Client) {
		c.fontsTimeout = fonts
		c.generateTimeout = generate
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:   &http.Client{},
		logger:       logging.NewNop(),
		newRequestID: core.NewCorrelationID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Busy reports whether a generate request is in flight.
func (c *Client) Busy() bool {
	return c.inFlight.Load()
}

type requestIDKey struct{}

// ContextWithRequestID makes the next call on ctx use id as its correlation id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

func (c *Client) requestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return c.newRequestID()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// do sends one request and returns the status and body. err is non-nil only
// for transport failures.
func (c *Client) do(ctx context.Context, method, path, requestID string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("service response",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
