// Package api wraps every outgoing REST call to the Codgoo backend: it
// decorates requests with the bearer token, locale, and a request ID, and
// interprets authentication failures on the way back, applying the
// forced-logout policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"codgoo/client/internal/session/store"
	"codgoo/client/internal/telemetry"
)

// DefaultBaseURL is the production Codgoo API; override with
// CODGOO_API_BASE_URL.
const DefaultBaseURL = "https://back.codgoo.com/codgoo/public/api"

const defaultTimeout = 30 * time.Second

// Client issues REST calls against the Codgoo API. It reads the bearer token
// from the credential store on every request, never once at construction, so
// a token set by a concurrent login is picked up immediately.
type Client struct {
	baseURL       string
	http          *http.Client
	store         store.Store
	locale        func() string
	policy        LogoutPolicy
	onInvalidated func(path string)
	events        telemetry.EventEmitter

	tracer        trace.Tracer
	requests      metric.Int64Counter
	forcedLogouts metric.Int64Counter
}

// Options configures a Client. Zero values fall back to defaults; only Store
// is required.
type Options struct {
	// BaseURL is the API root; defaults to DefaultBaseURL.
	BaseURL string
	// HTTPClient is the underlying transport; defaults to a client with a
	// 30s timeout.
	HTTPClient *http.Client
	// Locale returns the Accept-Language value per request; defaults to a
	// constant "en".
	Locale func() string
	// Policy classifies 401 responses; defaults to DefaultLogoutPolicy.
	Policy *LogoutPolicy
	// OnSessionInvalidated is called after a qualifying 401 has cleared the
	// credential store. The top-level coordinator subscribes here to perform
	// its hard reset (the browser equivalent navigates to /login). May be nil.
	OnSessionInvalidated func(path string)
	// Events receives a forced_logout session event after a qualifying 401
	// has cleared the store. May be nil.
	Events telemetry.EventEmitter
	// TracerProvider and MeterProvider default to the globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// New returns a Client backed by the given credential store.
func New(st store.Store, opts Options) (*Client, error) {
	if st == nil {
		return nil, errors.New("api: credential store is required")
	}
	baseURL := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	locale := opts.Locale
	if locale == nil {
		locale = func() string { return "en" }
	}
	policy := DefaultLogoutPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("codgoo/client/internal/api")
	requests, err := meter.Int64Counter("codgoo.client.requests",
		metric.WithDescription("Completed API requests by method and status."))
	if err != nil {
		return nil, err
	}
	forcedLogouts, err := meter.Int64Counter("codgoo.client.forced_logouts",
		metric.WithDescription("401 responses that cleared the credential store."))
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:       baseURL,
		http:          httpClient,
		store:         st,
		locale:        locale,
		policy:        policy,
		onInvalidated: opts.OnSessionInvalidated,
		events:        opts.Events,
		tracer:        tp.Tracer("codgoo/client/internal/api"),
		requests:      requests,
		forcedLogouts: forcedLogouts,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET request and decodes the response into out if non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with the given JSON body and decodes the
// response into out if non-nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do issues a request against the API. body is JSON-encoded when non-nil;
// out is filled from a 2xx response body when non-nil. Non-2xx responses
// return *Error; transport failures return the underlying error. A 401 on a
// session-sensitive path additionally clears the credential store and fires
// the invalidation callback before the error is returned.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	))
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", "transport_error"),
		))
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", resp.Status),
	))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("api: decode response: %w", err)
			}
		}
		return nil
	}

	apiErr := newError(resp, respBody)
	span.SetStatus(codes.Error, apiErr.Message)
	if resp.StatusCode == http.StatusUnauthorized && c.policy.ForcesLogout(path) {
		userID := ""
		if u := c.store.Get().User; u != nil {
			userID = u.ID
		}
		c.store.Clear()
		c.forcedLogouts.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
		telemetry.EmitAsync(c.events, &telemetry.SessionEvent{
			Type: telemetry.EventForcedLogout, UserID: userID, Path: path, Reason: apiErr.Message,
		})
		if c.onInvalidated != nil {
			c.onInvalidated(path)
		}
	}
	return apiErr
}

// decorate applies the per-request headers. The Authorization header is set
// only when the store currently holds a token; Accept-Language always
// reflects the locale preference.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	loc := c.locale()
	if loc == "" {
		loc = "en"
	}
	req.Header.Set("Accept-Language", loc)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.store.Get().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
}
