// Package netx is the resilient JSON-over-HTTP client used by the auth
// transport layer.
//
// Every failure is returned as *Error with a Kind (Encoding, Transport, HTTP,
// API, Unknown). Only Transport failures are retried, with exponential
// backoff and jitter; application-level rejections are handed back on first
// occurrence because the auth endpoints are non-idempotent POSTs.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/authflow/internal/logging"
)

// DefaultTimeout is the per-attempt connection and read timeout.
const DefaultTimeout = 30 * time.Second

type Client struct {
	http    *http.Client
	logger  logging.Logger
	retry   RetryPolicy
	limiter *rate.Limiter

	// test seams
	rand  func() float64
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-attempt timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithRateLimit paces outgoing attempts to rps requests per second.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.Nop(),
		retry:  DefaultRetryPolicy(),
		rand:   rand.Float64,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, url, nil, headers)
}

func (c *Client) Post(ctx context.Context, url string, body any, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) Patch(ctx context.Context, url string, body any, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodPatch, url, body, headers)
}

// Do performs the request and returns the raw success body (empty for 204).
// A nil body sends no payload. Transport failures are retried according to
// the retry policy unless ctx is done; every other failure returns at once.
func (c *Client) Do(ctx context.Context, method, url string, body any, headers map[string]string) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindEncoding, Method: method, URL: url, Err: err}
		}
		payload = b
	}

	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			d := c.retry.Delay(attempt-1, c.rand())
			c.logger.Debug(ctx, "retrying request", "method", method, "url", url, "retry", attempt-1, "delay", d)
			if err := c.sleep(ctx, d); err != nil {
				return nil, &Error{Kind: KindTransport, Method: method, URL: url, Err: err, Attempts: attempt - 1}
			}
		}

		data, err := c.attempt(ctx, method, url, payload, headers)
		if err == nil {
			return data, nil
		}
		err.Attempts = attempt

		if err.Kind != KindTransport || ctx.Err() != nil || attempt > c.retry.MaxRetries {
			return nil, err
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, headers map[string]string) ([]byte, *Error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindUnknown, Method: method, URL: url, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Method: method, URL: url, Err: err}
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, &Error{Kind: KindUnknown, Method: method, URL: url, Err: errUnsupportedScheme(req.URL.Scheme)}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "transport failure", "method", method, "url", url, "err", err)
		return nil, &Error{Kind: KindTransport, Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn(ctx, "transport failure reading body", "method", method, "url", url, "status", resp.StatusCode, "err", err)
		return nil, &Error{Kind: KindTransport, Method: method, URL: url, Err: err}
	}

	return c.handleResponse(ctx, method, url, resp, raw)
}

func (c *Client) handleResponse(ctx context.Context, method, url string, resp *http.Response, raw []byte) ([]byte, *Error) {
	if resp.StatusCode == http.StatusNoContent {
		return []byte{}, nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return raw, nil
	}

	e := &Error{
		Kind:   KindHTTP,
		Method: method,
		URL:    url,
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Raw:    raw,
	}
	if api, ok := decodeAPIError(raw); ok {
		e.Kind = KindAPI
		e.API = api
	}

	c.logger.Warn(ctx, "request rejected",
		"kind", e.Kind.String(),
		"method", method,
		"url", url,
		"status", e.Status,
		"headers", FormatHeaders(e.Header),
		"body", BodyPreview(raw),
	)
	return nil, e
}
