// Package gateway is the only path from the dashboard to the service-center backend.
//
// Every call returns a typed payload or a *Error carrying a human-readable message. The gateway
// attaches the session's bearer credential, refreshes it when it expires, and never caches or
// retries.
package gateway

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

	"github.com/jrsteele09/evcenter-admin/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Client holds the backend location and transport. It performs unauthenticated calls itself and
// hands out a Conn for authenticated ones.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the transport. Timeouts are the transport's responsibility.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the transport timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithClock overrides the clock used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the backend root all paths are appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type operation struct {
	resource string
	method   string
}

// do performs one round trip with hc. in is JSON-encoded when non-nil; out receives the decoded
// "data" envelope (or the bare body) when non-nil.
func (c *Client) do(ctx context.Context, hc *http.Client, op operation, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.GatewayRequestDuration.WithLabelValues(op.resource, op.method).Observe(time.Since(start).Seconds())
		metrics.GatewayRequestsTotal.WithLabelValues(op.resource, op.method, outcome).Inc()
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			outcome = "client_error"
			return &Error{Message: FallbackMessage, cause: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		outcome = "client_error"
		return &Error{Message: FallbackMessage, cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		outcome = "transport_error"
		gwErr := transportError(err)
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return gwErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return transportError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode >= 500 {
			outcome = "server_error"
		} else {
			outcome = "client_error"
		}
		gwErr := parseErrorResponse(resp.StatusCode, respBody)
		log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("backend_message", gwErr.Message).Msg("backend returned an error")
		return gwErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := decodeData(respBody, out); err != nil {
		outcome = "server_error"
		return &Error{StatusCode: resp.StatusCode, Message: FallbackMessage, cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeData accepts both {"data": X} and a bare X.
func decodeData(body []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(body, out)
}
