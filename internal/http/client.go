// Package http provides the authenticated transport used by the search
// client. It attaches bearer tokens, maps HTTP and network failures to the
// searchgoat error taxonomy, and performs the single 401-driven
// re-authentication retry. It never retries anything else unless the caller
// opts in via WithRetryConfig.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/searchgoat-io/searchgoat-go/internal/auth"
	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

const (
	defaultUserAgent   = "searchgoat-go"
	defaultHTTPTimeout = 30 * time.Second
	defaultRetryAfter  = 60 * time.Second
)

// Logger interface for transport debug logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request represents an HTTP request to the search API.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}

	// Accept overrides the default "application/json" Accept header. The
	// results endpoint uses it to request NDJSON.
	Accept string
}

// Response represents an HTTP response from the search API.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client is an HTTP client for the search API.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *retryablehttp.Client
	userAgent    string
	logger       Logger
	debug        bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a logger for the client.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables transport-level retries for transient failures.
// Off by default: the only built-in retry is the single 401 re-auth.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout sets the per-request transport timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a new HTTP client for the given API base URL.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = defaultHTTPTimeout
	// The default error handler swallows the final 429/5xx response once
	// retries are exhausted; pass it through so mapResponse sees the status.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      baseURL,
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request against the API. A 401 response invalidates the
// cached token and retries the original request exactly once with a fresh
// one; a second consecutive 401 surfaces as AuthenticationError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = encoded
	}

	resp, err := c.attempt(ctx, req, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == nethttp.StatusUnauthorized && c.tokenManager != nil {
		if c.debug && c.logger != nil {
			c.logger.Debug("Re-authenticating after 401", map[string]interface{}{
				"method": req.Method,
				"path":   req.Path,
			})
		}

		c.tokenManager.Invalidate()

		resp, err = c.attempt(ctx, req, body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == nethttp.StatusUnauthorized {
			return nil, &searchgoat.AuthenticationError{
				Status: resp.StatusCode,
				Detail: "request rejected after re-authentication",
			}
		}
	}

	return c.mapResponse(resp)
}

// attempt performs one HTTP round trip with a current bearer token.
func (c *Client) attempt(ctx context.Context, req *Request, body []byte) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}

	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, tokenErr := c.tokenManager.GetToken(ctx)
		if tokenErr != nil {
			return nil, tokenErr
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &searchgoat.NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &searchgoat.NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"bytes":  len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// mapResponse converts non-2xx responses into the error taxonomy.
func (c *Client) mapResponse(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	switch resp.StatusCode {
	case nethttp.StatusBadRequest:
		return resp, &searchgoat.QuerySyntaxError{Detail: serviceMessage(resp.Body)}
	case nethttp.StatusTooManyRequests:
		return resp, &searchgoat.RateLimitError{RetryAfter: retryAfter(resp.Headers)}
	default:
		return resp, &searchgoat.ServiceError{Status: resp.StatusCode, Body: resp.Body}
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}

// serviceMessage extracts the human-readable message from an error body.
func serviceMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}

	err := json.Unmarshal(body, &payload)
	if err == nil && payload.Message != "" {
		return payload.Message
	}

	return string(body)
}

// retryAfter parses the Retry-After header, which carries either a number of
// seconds or an HTTP-date. Missing or unparseable values default to 60s.
func retryAfter(headers nethttp.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return defaultRetryAfter
	}

	seconds, err := strconv.Atoi(value)
	if err == nil {
		if seconds < 0 {
			return defaultRetryAfter
		}

		return time.Duration(seconds) * time.Second
	}

	when, err := nethttp.ParseTime(value)
	if err != nil {
		return defaultRetryAfter
	}

	until := time.Until(when)
	if until < 0 {
		return 0
	}

	return until
}
