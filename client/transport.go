// Package client talks to the post generation backend over HTTP.
//
// Every service method returns an *envelope.Response and never a Go error:
// transport failures are classified into error envelopes at this boundary.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/hrygo/creastudio/cache"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/internal/profile"
	"github.com/hrygo/creastudio/internal/version"
	"github.com/hrygo/creastudio/metrics"
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables client-side rate limiting
	CompanyInfoMarker string
	PostCacheSize     int
	PostCacheTTL      time.Duration

	// Transport is the base round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// ConfigFromProfile maps the shared profile onto a client config.
func ConfigFromProfile(p *profile.Profile) Config {
	return Config{
		BaseURL:           p.BaseURL,
		Timeout:           p.RequestTimeout,
		RequestsPerSecond: p.RequestsPerSecond,
		CompanyInfoMarker: p.CompanyInfoMarker,
		PostCacheSize:     p.PostCacheSize,
		PostCacheTTL:      p.PostCacheTTL,
	}
}

// Client is the backend client. Its services share one transport and one
// session.
type Client struct {
	baseURL string
	authed  *http.Client // attaches the session bearer token
	anon    *http.Client // login and register
	limiter *rate.Limiter
	session *Session
	metrics *metrics.Exporter
	marker  string

	Auth      *AuthService
	Company   *CompanyService
	Catalog   *CatalogService
	Content   *ContentService
	Posts     *PostService
	Templates *TemplateService
}

// New creates a client. session may be nil for an anonymous in-memory one;
// exporter may be nil.
func New(cfg Config, session *Session, exporter *metrics.Exporter) *Client {
	if session == nil {
		session = NewSession()
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	marker := cfg.CompanyInfoMarker
	if marker == "" {
		marker = profile.DefaultCompanyInfoMarker
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = profile.DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		authed: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &oauth2.Transport{Source: session, Base: base},
		},
		anon:    &http.Client{Timeout: cfg.Timeout, Transport: base},
		session: session,
		metrics: exporter,
		marker:  strings.ToLower(marker),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	c.Auth = &AuthService{c: c}
	c.Company = &CompanyService{c: c}
	c.Catalog = &CatalogService{c: c}
	c.Content = &ContentService{c: c}
	c.Posts = &PostService{c: c, cache: cache.New[int64, Post](cfg.PostCacheSize, cfg.PostCacheTTL)}
	c.Templates = &TemplateService{c: c}
	return c
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) BaseURL() string { return c.baseURL }

// request describes one backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool

	// endpoint labels the call in metrics and logs.
	endpoint string
}

func jsonRequest(method, path, endpoint string, in any) (*request, error) {
	req := &request{method: method, path: path, endpoint: endpoint}
	if in == nil {
		return req, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s request", endpoint)
	}
	req.body = bytes.NewReader(b)
	req.contentType = "application/json"
	return req, nil
}

// do performs the call and returns the body of a 2xx response. Any other
// outcome is an *envelope.TransportError; its Response is nil when nothing
// came back from the server.
func (c *Client) do(ctx context.Context, r *request) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	fail := func(err error) error {
		return &envelope.TransportError{Method: r.method, URL: u, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fail(errors.Wrap(err, "rate limiter"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fail(err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	hc := c.authed
	if r.anonymous {
		hc = c.anon
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.metrics.RecordRequest(r.endpoint, 0, time.Since(start))
		slog.Warn("backend request failed",
			"endpoint", r.endpoint,
			"method", r.method,
			"request_id", requestID,
			"error", err,
		)
		return nil, fail(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	c.metrics.RecordRequest(r.endpoint, resp.StatusCode, latency)
	if err != nil {
		return nil, fail(errors.Wrapf(err, "failed to read %s response", r.endpoint))
	}

	slog.Debug("backend request",
		"endpoint", r.endpoint,
		"method", r.method,
		"status", resp.StatusCode,
		"duration_ms", latency.Milliseconds(),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &envelope.TransportError{
			Method:   r.method,
			URL:      u,
			Err:      errors.Errorf("unexpected status %d", resp.StatusCode),
			Response: &envelope.HTTPResponse{StatusCode: resp.StatusCode, Body: body},
		}
	}
	return body, nil
}

// statusOf returns the HTTP status and decoded error body of a transport
// error; status is 0 when there was no response.
func statusOf(err error) (int, *envelope.ErrorPayload) {
	var te *envelope.TransportError
	if !errors.As(err, &te) {
		return 0, &envelope.ErrorPayload{}
	}
	return te.StatusCode(), te.Payload()
}

// backendResponse is the {success, data, error, message} wrapper most
// endpoints answer with.
type backendResponse[T any] struct {
	Success *bool           `json:"success"`
	Data    *T              `json:"data"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (b *backendResponse[T]) ok() bool {
	return b.Success != nil && *b.Success && b.Data != nil
}

func (b *backendResponse[T]) failed() bool {
	return b.Success != nil && !*b.Success && len(b.Error) > 0 && string(b.Error) != "null"
}

func (b *backendResponse[T]) errorText() string {
	p := envelope.ErrorPayload{RawError: b.Error}
	return p.ErrorText()
}

func decodeBackend[T any](body []byte) *backendResponse[T] {
	out := &backendResponse[T]{}
	if err := json.Unmarshal(body, out); err != nil {
		return &backendResponse[T]{}
	}
	return out
}

// record counts an envelope outcome for operation and passes it through.
func record[T any](c *Client, operation string, r *envelope.Response[T]) *envelope.Response[T] {
	c.metrics.RecordOutcome(operation, string(r.Status), string(r.Code()))
	if r.IsError() {
		slog.Debug("backend call failed", "operation", operation, "code", r.Code(), "message", r.Message)
	}
	return r
}
