package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20

	// RequestIDHeader is set on every outbound request.
	RequestIDHeader = "X-Request-ID"
)

// TokenSource yields the access token to attach, or "" for none.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Request describes one JSON call against the account API.
type Request struct {
	Method       string
	Path         string // Relative to the base URL, e.g. "/users/login/"
	Body         any    // Encoded as JSON when non-nil
	ExpectStatus int    // Required status; 0 accepts any 2xx
	Fallback     string // Message used when a failure body carries none
}

// Client sends JSON requests to the account API with the stored credential
// attached. Failures come back as *apierr.Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    *time.Duration
	logger     zerolog.Logger
}

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped so credentials and request ids are still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. It applies to the client's own
// copy and never changes a client passed to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = utils.Ptr(d)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for baseURL. tokens may be nil, in which case every
// call is unauthenticated.
func New(baseURL string, tokens TokenSource, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway.New] invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("[gateway.New] base URL must use http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &bearerTransport{base: base, tokens: tokens}
	if c.timeout != nil {
		wrapped.Timeout = *c.timeout
	}
	c.httpClient = &wrapped

	return c, nil
}

// Send performs req and decodes a successful body into out (when non-nil).
// It returns the response status (0 when none was received) and, on failure,
// an *apierr.Error.
func (c *Client) Send(ctx context.Context, req Request, out any) (int, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return 0, errors.Wrap(err, "[Client.Send] encode body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return 0, errors.Wrap(err, "[Client.Send] build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", requestID).
			Err(err).
			Msg("request failed")
		return 0, apierr.Normalize(0, nil, err, req.Fallback)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, apierr.Normalize(0, nil, err, req.Fallback)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request complete")

	if !statusAccepted(resp.StatusCode, req.ExpectStatus) {
		return resp.StatusCode, apierr.Normalize(resp.StatusCode, raw, nil, req.Fallback)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &apierr.Error{
				Kind:    apierr.KindServer,
				Message: req.Fallback,
				Status:  resp.StatusCode,
				Cause:   errors.Wrap(err, "[Client.Send] decode body"),
			}
		}
	}
	return resp.StatusCode, nil
}

// Post is Send with method POST.
func (c *Client) Post(ctx context.Context, path string, in any, out any, fallback string) (int, error) {
	return c.Send(ctx, Request{Method: http.MethodPost, Path: path, Body: in, Fallback: fallback}, out)
}

// Get is Send with method GET.
func (c *Client) Get(ctx context.Context, path string, out any, fallback string) (int, error) {
	return c.Send(ctx, Request{Method: http.MethodGet, Path: path, Fallback: fallback}, out)
}

func statusAccepted(status, expect int) bool {
	if expect != 0 {
		return status == expect
	}
	return status >= 200 && status < 300
}
