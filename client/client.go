// Package client talks to the list endpoints of the console's backend.
//
// Every list endpoint accepts the unprefixed request parameters produced by
// pagequery.Request.Values and answers with a pagequery.Page envelope.
// Requests are not retried unless WithRetryMax says otherwise: a failed
// fetch surfaces as an error and the caller decides when to try again.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response is kept as the message.
const maxErrorBody = 4096

// Client is a REST client for one backend.
type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client
	header  http.Header
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (timeouts, transport,
// cookie jar).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.http.Logger = leveledLogger{logger: logger}
	}
}

// WithRetryMax enables automatic retries of failed requests. The default is
// zero: no retry.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.RetryMax = n
		}
	}
}

// WithHeader adds a header sent with every request, e.g. Authorization.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithBearerToken authenticates every request with token.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	logger := zerolog.Nop()
	rc.Logger = leveledLogger{logger: logger}

	c := &Client{
		baseURL: u,
		http:    rc,
		header:  http.Header{},
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the backend's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins resource and optional path elements onto the base URL.
func (c *Client) resolve(resource string, elems ...string) *url.URL {
	u := c.baseURL.JoinPath(append([]string{resource}, elems...)...)
	u.RawQuery = ""
	u.Fragment = ""
	return u
}

// do sends a request and decodes a JSON response into out when out is not
// nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}

	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Str("method", method).Str("url", u.String()).Msg("request failed")
		return errors.Wrapf(err, "%s", op)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}

	return nil
}

// leveledLogger adapts zerolog to retryablehttp's LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
