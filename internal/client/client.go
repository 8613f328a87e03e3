package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/protacc/storefront/internal/pkg/logging"
)

// TokenSource yields the bearer credential for an outgoing request, normally
// from the request context populated by the route gate.
type TokenSource func(ctx context.Context) string

// Config holds the remote API settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// Client is the gateway to the remote services API. All calls are single
// round trips: failures surface to the caller, nothing is retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logging.Logger
	debug   bool
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger overrides the default logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenSource overrides where the bearer token is read from.
func WithTokenSource(source TokenSource) Option {
	return func(c *Client) {
		if source != nil {
			c.tokens = source
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// New returns a Client for the given API base URL, e.g.
// https://api.example.com/api/v1.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  TokenFromContext,
		logger:  logging.Default(),
		debug:   cfg.Debug,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiError is the structured error body the API returns on failures.
type apiError struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e apiError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do performs one JSON round trip. On success the response body is decoded
// into out (when non-nil) and the response headers are returned so callers
// can inspect token-bearing headers.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.tokens(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "the service is unavailable, please try again").
			WithCode(goerrors.CodeInternal)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read response").
			WithCode(goerrors.CodeInternal)
	}

	if c.debug {
		fmt.Printf("=== API %s %s -> %d ===\n%s\n", method, path, res.StatusCode, print.MaybePrettyJSON(json.RawMessage(raw)))
	}

	if res.StatusCode >= 400 {
		return nil, c.normalizeFailure(method, path, res.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.logger.Error("api response decode failed", "method", method, "path", path, "error", err)
			return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "unexpected response from the service").
				WithCode(goerrors.CodeInternal)
		}
	}

	return res.Header, nil
}

// normalizeFailure maps an API failure to a user-presentable error. Raw
// transport and decode noise never escapes this package.
func (c *Client) normalizeFailure(method, path string, status int, body []byte) error {
	apiErr := apiError{}
	_ = json.Unmarshal(body, &apiErr)

	meta := map[string]any{
		"method": method,
		"path":   path,
		"status": status,
	}

	switch status {
	case http.StatusUnauthorized:
		c.logger.Warn("authorization rejected by api", "method", method, "path", path)
		return ErrAuthExpired.WithMetadata(meta)
	case http.StatusForbidden:
		return goerrors.New(messageOr(apiErr, "you do not have access to this resource"), goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden).
			WithMetadata(meta)
	case http.StatusNotFound:
		return goerrors.New(messageOr(apiErr, "the requested resource was not found"), goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound).
			WithMetadata(meta)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return goerrors.New(messageOr(apiErr, "the request could not be processed"), goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(meta)
	case http.StatusConflict:
		return goerrors.New(messageOr(apiErr, "the request conflicts with existing data"), goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict).
			WithMetadata(meta)
	default:
		c.logger.Error("api call failed", "method", method, "path", path, "status", status)
		return goerrors.New(messageOr(apiErr, "something went wrong, please try again"), goerrors.CategoryOperation).
			WithCode(goerrors.CodeInternal).
			WithMetadata(meta)
	}
}

func messageOr(apiErr apiError, fallback string) string {
	if msg := apiErr.text(); msg != "" {
		return msg
	}
	return fallback
}
