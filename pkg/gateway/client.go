package gateway

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
	"github.com/rs/zerolog"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// RequestIDHeader carries the per-call request identifier.
const RequestIDHeader = "X-Request-ID"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 16 << 20
)

// ErrBaseURL is returned by New for an unusable base URL.
var ErrBaseURL = errors.New("invalid API base URL")

// Client posts JSON calls to the API and normalizes their envelopes.
// A Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    zerolog.Logger
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-call timeout. It applies to a copy of the current
// http.Client, so a client given to WithHTTPClient keeps its other settings
// and is not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithLogger sets the logger. Calls log at debug, the double-encoding
// workaround at warn.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestID replaces the request id generator.
func WithRequestID(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.requestID = gen
		}
	}
}

// New returns a client rooted at baseURL, e.g. http://127.0.0.1:8088/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    zerolog.Nop(),
		requestID: newRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the URL the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call posts payload to path and returns the data of a successful envelope.
// A success:false envelope yields a *types.RemoteFailure; anything that is
// not a readable envelope yields a *types.TransportError.
func (c *Client) Call(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	reqID := c.requestID()
	log := c.logger.With().Str("path", path).Str("request_id", reqID).Logger()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &types.TransportError{Op: path, Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+strings.TrimLeft(path, "/"), bytes.NewReader(body))
	if err != nil {
		return nil, &types.TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("call failed")
		return nil, &types.TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &types.TransportError{Op: path, Err: fmt.Errorf("reading response: %w", err)}
	}
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("call finished")

	env, doubled, err := Decode(raw)
	if doubled {
		log.Warn().Msg("response envelope was double-encoded; decoded the inner string")
	}
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &types.TransportError{Op: path, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}
		return nil, &types.TransportError{Op: path, Err: err}
	}
	if err := env.Err(); err != nil {
		log.Debug().Str("message", env.Message).Msg("remote failure")
		return nil, err
	}
	return env.Data, nil
}

// Invoke is Call followed by decoding the data into out. A nil out discards
// the data.
func (c *Client) Invoke(ctx context.Context, path string, payload, out any) error {
	data, err := c.Call(ctx, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &types.TransportError{Op: path, Err: fmt.Errorf("decoding data: %w", err)}
	}
	return nil
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
