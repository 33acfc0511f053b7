package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/t0bias84/hagelskott/auth"
	"github.com/t0bias84/hagelskott/observe"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8001"

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every request path.
	// Default: DefaultBaseURL
	BaseURL string

	// Tokens supplies the bearer token. Default: no token.
	Tokens auth.TokenSource

	// Timeout bounds each attempt. Default: DefaultTimeout.
	Timeout time.Duration

	// Retry configures retries of network failures. Default: no retry.
	Retry RetryConfig

	// Breaker fails requests fast while the server is down. Optional.
	Breaker *Breaker

	// Transport is the underlying round tripper. Default: http.DefaultTransport.
	Transport http.RoundTripper

	// Middleware instruments the transport when set.
	Middleware *observe.Middleware

	// UserAgent is sent with every request when set.
	UserAgent string

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	Logger observe.Logger
}

// Client performs authenticated JSON requests.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: every failure is a *NetworkError or *HTTPError, except
//     request construction errors (ErrEmptyPath, body encoding).
//   - The client has no cache and no side effects beyond the request.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    auth.TokenSource
	timeout   time.Duration
	retry     *retrier
	breaker   *Breaker
	userAgent string
	now       func() time.Time
	logger    observe.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}
	if cfg.Tokens == nil {
		cfg.Tokens = auth.NoToken()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if cfg.Middleware != nil {
		transport = cfg.Middleware.WrapTransport(transport)
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Transport: transport},
		tokens:    cfg.Tokens,
		timeout:   cfg.Timeout,
		retry:     newRetrier(cfg.Retry),
		breaker:   cfg.Breaker,
		userAgent: cfg.UserAgent,
		now:       cfg.Now,
		logger:    observe.OrNop(cfg.Logger).With(observe.F("component", "apiclient")),
	}
	c.retry.onRetry = func(ctx context.Context, attempt int, err error, delay time.Duration) {
		c.logger.Info(ctx, "retrying request",
			observe.F("attempt", attempt),
			observe.F("delay_ms", delay.Milliseconds()),
			observe.Err(errors.Unwrap(err)),
		)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do issues a request and returns the decoded JSON body.
//
// body may be nil, json.RawMessage, []byte (sent as is) or any value
// encodable with encoding/json. A nil result with a nil error means the
// server answered 2xx with an empty or non-JSON body.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	ro := newRequestOptions(opts)

	target, err := c.resolve(path, ro.query)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	err = c.retry.do(ctx, method, func(ctx context.Context) error {
		var attemptErr error
		result, attemptErr = c.attempt(ctx, method, target, payload, ro.header)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) attempt(ctx context.Context, method string, target *url.URL, payload []byte, header http.Header) (json.RawMessage, error) {
	if c.breaker != nil {
		if err := c.breaker.allow(); err != nil {
			return nil, &NetworkError{Method: method, Path: target.Path, Err: err}
		}
	}

	result, err := c.roundTrip(ctx, method, target, payload, header)
	if c.breaker != nil {
		c.breaker.record(err)
	}
	return result, err
}

func (c *Client) roundTrip(ctx context.Context, method string, target *url.URL, payload []byte, header http.Header) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	c.applyHeaders(ctx, req, header)

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: method, Path: target.Path, Err: err}
		c.logger.Warn(ctx, "api unreachable",
			observe.F("method", method),
			observe.F("path", target.Path),
			observe.F("request_id", req.Header.Get("X-Request-ID")),
			observe.Err(err),
		)
		return nil, netErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Method: method, Path: target.Path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
			Method:     method,
			Path:       target.Path,
		}
	}

	return c.decodeSuccess(ctx, target.Path, raw), nil
}

// applyHeaders sets caller headers first so the defaults win on conflict.
func (c *Client) applyHeaders(ctx context.Context, req *http.Request, header http.Header) {
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn(ctx, "token unavailable, sending request without it", observe.Err(err))
		return
	}
	if token == "" {
		return
	}
	if errors.Is(auth.CheckExpiry(token, c.now()), auth.ErrTokenExpired) {
		c.logger.Warn(ctx, "stored token has expired, log in again")
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (c *Client) decodeSuccess(ctx context.Context, path string, raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if !json.Valid(trimmed) {
		c.logger.Debug(ctx, "response is not valid JSON, returning null",
			observe.F("path", path),
			observe.F("bytes", len(raw)),
		)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid path %q: %w", path, err)
	}

	target := *c.base
	target.Path = strings.TrimRight(c.base.Path, "/") + ref.Path
	q := ref.Query()
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	target.RawQuery = q.Encode()
	return &target, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		return encoded, nil
	}
}

// errorMessage extracts "detail" or "message" from an error body.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return StatusMessage(status)
	}
	if msg := detailText(body.Detail); msg != "" {
		return msg
	}
	var msg string
	if json.Unmarshal(body.Message, &msg) == nil && msg != "" {
		return msg
	}
	return StatusMessage(status)
}

// detailText accepts a string detail or a list of {"msg": ...} items.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, ", ")
	}
	return ""
}
