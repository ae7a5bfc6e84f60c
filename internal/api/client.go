// Package api holds the typed module data clients: one-call-per-operation
// wrappers over the backend's remote endpoints. Clients are a pure transport
// boundary with no retries and no caching; policy (fallback, redirects,
// transcript mapping) lives one layer up.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer credential attached to every request.
// The session store implements it.
type TokenSource interface {
	Token() (string, bool)
}

// APIError is the typed transport failure surfaced by every client call.
// StatusCode is zero when the request never reached the server.
// ServerMessage carries the explanatory text from the response body when
// the server sent one; Message describes the failure from the transport's
// point of view.
type APIError struct {
	StatusCode    int
	Message       string
	ServerMessage string
	Cause         error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	if e.ServerMessage != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.ServerMessage)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Cause }

// IsUnauthorized reports whether err is a 401 or 403 transport error. The
// caller decides what to do with it; the client never auto-retries and
// never logs the session out on its own.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Invalidator is notified after every successful write with the aggregate
// keys the mutation affects, so cached aggregates can be dropped by table
// lookup instead of per-call-site judgment.
type Invalidator interface {
	Invalidate(keys []string)
}

// InvalidatorFunc adapts a function to the Invalidator interface.
type InvalidatorFunc func(keys []string)

func (f InvalidatorFunc) Invalidate(keys []string) { f(keys) }

// Client is the shared HTTP transport under every module data client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	logger      *slog.Logger
	invalidator Invalidator
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithInvalidator(inv Invalidator) Option {
	return func(c *Client) { c.invalidator = inv }
}

func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody covers the error payload shapes the backend produces. The
// conversational endpoint explains failures through summary; the REST
// endpoints use detail or message.
type errorBody struct {
	Summary string `json:"summary"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	switch {
	case b.Summary != "":
		return b.Summary
	case b.Message != "":
		return b.Message
	case b.Detail != "":
		return b.Detail
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	rdr, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, query, "application/json", rdr, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", body, out)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, out any) error {
	rdr, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, query, "application/json", rdr, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil)
}

func encodeJSON(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Message: "failed to encode request body", Cause: err}
	}
	return bytes.NewReader(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &APIError{Message: "failed to build request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed before reaching server",
			"method", method, "path", path, "error", err)
		return &APIError{Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		c.logger.Debug("non-2xx response",
			"method", method, "path", path, "status", resp.StatusCode)
		return &APIError{
			StatusCode:    resp.StatusCode,
			Message:       "request rejected",
			ServerMessage: eb.text(),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response payload", Cause: err}
	}
	return nil
}

// wroteThrough records a successful mutation against the invalidation table.
func (c *Client) wroteThrough(op Operation) {
	if c.invalidator == nil {
		return
	}
	keys := AffectedAggregates(op)
	if len(keys) == 0 {
		return
	}
	c.invalidator.Invalidate(keys)
}
