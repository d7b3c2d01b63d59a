/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package clickup is a thin typed client for the ClickUp REST API.
// Every method issues at most one request unless documented otherwise.
// There is no retry, caching or rate limiting.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
)

// Client talks to the ClickUp v2 and v3 APIs
type Client struct {
	apiKey     string
	baseURL    string
	v3BaseURL  string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithBaseURL overrides the v2 API root
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithV3BaseURL overrides the v3 API root
func WithV3BaseURL(u string) Option {
	return func(c *Client) {
		c.v3BaseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient supplies the underlying HTTP client. Its transport is wrapped for authentication.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client authenticating with apiKey
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   global.DefaultAPIBaseURL,
		v3BaseURL: global.DefaultAPIV3BaseURL,
		userAgent: global.ProgramName + "/" + global.Version,
		timeout:   time.Duration(global.DefaultRequestTimeout) * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := http.DefaultTransport
	hc := &http.Client{}
	if c.httpClient != nil {
		copied := *c.httpClient
		hc = &copied
		if hc.Transport != nil {
			base = hc.Transport
		}
	}
	hc.Transport = &authTransport{base: base, token: c.apiKey}
	c.httpClient = hc

	return c
}

// authTransport is an http.RoundTripper that adds the Authorization header
type authTransport struct {
	base  http.RoundTripper
	token string
}

// RoundTrip sets Authorization on a clone so the caller's request is untouched
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", AuthorizationHeader(t.token))
	return t.base.RoundTrip(cloned)
}

// AuthorizationHeader returns the header value for token.
// Personal tokens (pk_) are sent as-is; OAuth tokens use the Bearer scheme.
func AuthorizationHeader(token string) string {
	if strings.HasPrefix(token, "pk_") || strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return "Bearer " + token
}

// FormatTaskURL returns the web URL for a task ID
func FormatTaskURL(taskID string) string {
	return global.TaskURLPrefix + taskID
}

// get issues a GET against the v2 API
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, c.baseURL, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, c.baseURL, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, c.baseURL, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL, path, nil, nil, nil)
}

// do performs one request, maps failures to *Error and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, method, base, path string, query url.Values, body, out interface{}) error {
	if c.apiKey == "" {
		return NewError(KindUnauthorized, "no API key configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debugf("ClickUp %s %s failed after %s: %v", method, path, time.Since(start).Round(time.Millisecond), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errorFromTransport(ctxErr)
		}
		return errorFromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorFromTransport(err)
	}
	c.logger.Debugf("ClickUp %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindRemoteError, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

// pathEscape escapes an identifier for use as a path segment
func pathEscape(id string) string {
	return url.PathEscape(id)
}
