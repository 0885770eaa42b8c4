// Package graphql posts named documents to the backend's GraphQL endpoint
// and extracts results from the response with gjson.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/adpaws/dashboard/internal/metrics"
)

var (
	// ErrNoData is returned when a response carries no value at the
	// document's result field.
	ErrNoData = errors.New("graphql response has no data")
	// ErrUnauthenticated is matched by remote errors whose code says the
	// bearer token was missing or rejected.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Document is a named query or mutation. Field is the top-level selection
// whose value is the operation's result, i.e. the response is read at
// data.<Field>.
type Document struct {
	Name  string
	Field string
	Query string
}

// TokenSource provides the bearer token attached to each request.
// An empty token sends no Authorization header.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// AccessToken implements TokenSource.
func (f TokenFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// RemoteError is the non-empty errors array of a response.
type RemoteError struct {
	Operation string
	Messages  []string
	Codes     []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// Is reports UNAUTHENTICATED and FORBIDDEN codes as ErrUnauthenticated.
func (e *RemoteError) Is(target error) bool {
	if target != ErrUnauthenticated {
		return false
	}
	for _, c := range e.Codes {
		if c == "UNAUTHENTICATED" || c == "FORBIDDEN" {
			return true
		}
	}
	return false
}

// Message is the first remote message, suitable for showing to the user.
func (e *RemoteError) Message() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

// StatusError is returned for a non-2xx response without a GraphQL body.
type StatusError struct {
	Operation string
	Status    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.Status)
}

// Is maps 401 to ErrUnauthenticated.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// Client talks to one GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	tokens   TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request, whatever HTTP client is in use.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTokenSource attaches bearer tokens.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New creates a client for endpoint, e.g. "http://localhost:3000/graphql".
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Do posts doc with vars and returns the value at data.<doc.Field>.
func (c *Client) Do(ctx context.Context, doc Document, vars map[string]any) (gjson.Result, error) {
	start := time.Now()
	res, err := c.do(ctx, doc, vars)

	outcome := "ok"
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		outcome = "remote_error"
	case err != nil:
		outcome = "transport_error"
	}
	metrics.RecordGraphQL(doc.Name, outcome, time.Since(start))

	if err != nil {
		slog.Debug("GraphQL operation failed", "operation", doc.Name, "error", err)
	}
	return res, err
}

func (c *Client) do(ctx context.Context, doc Document, vars map[string]any) (gjson.Result, error) {
	body, err := json.Marshal(request{OperationName: doc.Name, Query: doc.Query, Variables: vars})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode %s: %w", doc.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to build %s request: %w", doc.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("failed to get access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to send %s: %w", doc.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read %s response: %w", doc.Name, err)
	}

	if !gjson.ValidBytes(raw) {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return gjson.Result{}, &StatusError{Operation: doc.Name, Status: resp.StatusCode}
		}
		return gjson.Result{}, fmt.Errorf("%s: response is not JSON", doc.Name)
	}

	parsed := gjson.ParseBytes(raw)
	if errs := parsed.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		remote := &RemoteError{Operation: doc.Name}
		for _, e := range errs.Array() {
			remote.Messages = append(remote.Messages, e.Get("message").String())
			if code := e.Get("extensions.code"); code.Exists() {
				remote.Codes = append(remote.Codes, code.String())
			}
		}
		return gjson.Result{}, remote
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, &StatusError{Operation: doc.Name, Status: resp.StatusCode}
	}

	data := parsed.Get("data." + doc.Field)
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, fmt.Errorf("%w at %s", ErrNoData, doc.Field)
	}
	return data, nil
}

// Decode unmarshals a result into T.
func Decode[T any](r gjson.Result) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(r.Raw), &v); err != nil {
		return v, fmt.Errorf("failed to decode result: %w", err)
	}
	return v, nil
}

// Query runs doc and decodes the result into T.
func Query[T any](ctx context.Context, c *Client, doc Document, vars map[string]any) (T, error) {
	res, err := c.Do(ctx, doc, vars)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](res)
}
