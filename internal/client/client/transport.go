package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/pdflearn/internal/common"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

const (
	tracerName = "github.com/dmitrijs2005/pdflearn/internal/client/client"
	spanName   = "pdflearn.http"
)

// SessionStore is the part of the session the transport needs: the token to
// send and a way to wipe everything on 401.
type SessionStore interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context) error
}

// RawBody is sent as-is instead of being JSON encoded.
type RawBody struct {
	ContentType string
	Reader      io.Reader
}

// Response is a successful (2xx) answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type requestOptions struct {
	query   url.Values
	noAuth  bool
	headers http.Header
}

type RequestOption func(*requestOptions)

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func WithHeader(name, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Add(name, value)
	}
}

// WithoutAuth skips the Authorization header.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

type Option func(*HTTPClient)

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.hc.Timeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.hc.Transport = rt }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *HTTPClient) { c.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(c *HTTPClient) { c.meter = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// HTTPClient is the request wrapper every API facade goes through.
type HTTPClient struct {
	base    *url.URL
	hc      *http.Client
	session SessionStore
	tracer  trace.Tracer
	meter   metric.Meter
	log     logging.Logger

	requests metric.Int64Counter
	duration metric.Float64Histogram

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// NewHTTPClient builds a client for baseURL (e.g. http://localhost:8000/api).
// session may be nil, in which case no token is sent and nothing is cleared.
func NewHTTPClient(baseURL string, session SessionStore, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url: unsupported scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		base:    u,
		hc:      &http.Client{Jar: jar},
		session: session,
		tracer:  otel.Tracer(tracerName),
		meter:   otel.Meter(tracerName),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.requests, err = c.meter.Int64Counter("pdflearn.http.requests",
		metric.WithDescription("Number of API requests by method and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	c.duration, err = c.meter.Float64Histogram("pdflearn.http.duration",
		metric.WithDescription("API request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *HTTPClient) BaseURL() string { return c.base.String() }

// OnUnauthorized registers the single listener fired after a 401 wiped the
// session. A later call replaces the earlier listener; nil removes it.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *HTTPClient) resolve(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case RawBody:
		return b.Reader, b.ContentType, nil
	case *RawBody:
		return b.Reader, b.ContentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// Do sends one request. body is JSON encoded unless it is a RawBody.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	started := time.Now()
	status := 0
	defer func() { c.record(ctx, method, status, started) }()

	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("pdflearn.request_id", requestID),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, o.query), reader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range o.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if !o.noAuth && c.session != nil {
		if token := c.session.Token(ctx); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		err = mapError(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = mapError(ctx, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		span.SetStatus(codes.Error, apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx)
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
		}
		return nil, apiErr
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// record counts the request. A status of 0 means no response arrived.
func (c *HTTPClient) record(ctx context.Context, method string, status int, started time.Time) {
	outcome := "network_error"
	if status > 0 {
		outcome = fmt.Sprintf("%dxx", status/100)
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("outcome", outcome),
	)
	ctx = context.WithoutCancel(ctx)
	c.requests.Add(ctx, 1, attrs)
	c.duration.Record(ctx, time.Since(started).Seconds(), attrs)
}

// handleUnauthorized wipes the session before anyone sees the error.
func (c *HTTPClient) handleUnauthorized(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if c.session != nil {
		if err := c.session.Clear(ctx); err != nil {
			c.log.Error(ctx, "clear session after 401", "error", err)
		}
	}

	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

// Ping checks that the API root answers at all. Any HTTP status counts as
// reachable; no token is sent and a 401 here never clears the session.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return mapError(ctx, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// mapError keeps caller cancellation as is and turns everything else into ErrUnavailable.
func mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// call runs a request and decodes the JSON answer into T.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
