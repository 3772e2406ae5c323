// Package runner proxies code-execution requests to the external sandbox
// service. Code never runs in this process; the sandbox is the only
// execution environment and this client adds validation, a rate limit and a
// hard timeout in front of it.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Request limits. Oversized submissions are rejected before any network
// traffic happens.
const (
	MaxCodeBytes  = 64 * 1024
	MaxStdinBytes = 16 * 1024
)

// Sentinel errors.
var (
	ErrRateLimited         = errors.New("execution rate limit exceeded")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrCodeTooLarge        = errors.New("code exceeds size limit")
	ErrSandboxUnavailable  = errors.New("sandbox unavailable")
)

var supportedLanguages = map[string]bool{
	"go":         true,
	"python":     true,
	"javascript": true,
	"typescript": true,
	"rust":       true,
	"c":          true,
	"cpp":        true,
}

// Request is one code-execution submission.
type Request struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin,omitempty"`
}

// Result is the sandbox's verdict.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	TimedOut bool   `json:"timedOut"`
}

// Client forwards execution requests to the sandbox service.
// Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit replaces the default limiter (one run per second, burst 5).
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// New creates a sandbox client for the given base URL. logger may be nil.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run validates the request, takes a rate-limit token and forwards the
// submission to the sandbox's /execute endpoint.
func (c *Client) Run(ctx context.Context, req Request) (*Result, error) {
	if !supportedLanguages[req.Language] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}
	if len(req.Code) > MaxCodeBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrCodeTooLarge, len(req.Code))
	}
	if len(req.Stdin) > MaxStdinBytes {
		return nil, fmt.Errorf("%w: stdin %d bytes", ErrCodeTooLarge, len(req.Stdin))
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building execution request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSandboxUnavailable, resp.StatusCode, payload)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding sandbox response: %w", err)
	}

	c.logger.Debug("code executed",
		"language", req.Language,
		"exit_code", result.ExitCode,
		"elapsed", time.Since(start))
	return &result, nil
}
