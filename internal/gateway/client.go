// Package gateway is the only network boundary of the clinic client. Every
// remote call goes through Client.Request, which attaches auth, encodes the
// body and normalises failures into HTTPError or TransportError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token, if any. session.Store satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero keeps the transport's defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithRateLimit throttles outgoing requests client-side. rps <= 0 disables it.
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

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the service at baseURL. tokens may be nil.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request sends one JSON request and returns the raw JSON result. A 204 or
// an empty body yields "{}".
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	return c.send(ctx, method, endpoint, body, nil)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any, header http.Header) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: "encode", Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, &TransportError{Op: "build", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	authed := false
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
			authed = true
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: "throttle", Err: err}
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", endpoint).Msg("request failed")
		return nil, &TransportError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Bool("auth", authed).
		Msg("api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp, raw)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, &TransportError{Op: "decode", Err: fmt.Errorf("invalid JSON from %s %s", method, endpoint)}
	}
	return raw, nil
}

// call runs send and decodes the result into out, which may be nil.
func (c *Client) call(ctx context.Context, method, endpoint string, body, out any, header http.Header) error {
	raw, err := c.send(ctx, method, endpoint, body, header)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	return nil
}
