package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// Default client settings.
const (
	// DefaultTimeout covers the slowest endpoint. A stage-2 or stage-3
	// request runs an LLM pass on the backend and routinely takes a minute.
	DefaultTimeout = 180 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultHistoryLimit is the page size the backend uses when none is given.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit is the largest page size the backend accepts.
	MaxHistoryLimit = 100

	// DefaultUserAgent identifies the client in backend logs.
	DefaultUserAgent = "ytanalyzer (+https://github.com/nao1215/ytanalyzer)"
)

// Client talks to the analysis backend.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	logger      *slog.Logger
	maxBodySize int64

	// settings collected by options and applied in NewClient
	timeout   time.Duration
	proxy     string
	token     string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall timeout of a single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes all requests through a SOCKS5 proxy at "host:port".
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxy = address
	}
}

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The token and
// request id headers are still injected. Proxy and timeout options are
// ignored because they configure the replaced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the backend at baseURL, for example
// "http://localhost:8000". The "/api" prefix is appended per endpoint.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:     u,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		hc, err := newHTTPClient(c.proxy, c.timeout)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &headerInjectingTransport{
		base:      base,
		token:     c.token,
		userAgent: c.userAgent,
	}
	c.httpClient = &wrapped

	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Analyze submits a video URL for the initial analysis.
// A cached result is flagged with Response.Cached.
func (c *Client) Analyze(ctx context.Context, videoURL string) *ResultResponse {
	return do[*model.AnalysisResult](ctx, c, "analyze", http.MethodPost, "/api/analyze",
		map[string]string{"url": videoURL})
}

// Result fetches a stored analysis by id.
func (c *Client) Result(ctx context.Context, id string) *ResultResponse {
	return do[*model.AnalysisResult](ctx, c, "result", http.MethodGet,
		"/api/result/"+url.PathEscape(id), nil)
}

// History lists past analyses, newest first. limit is clamped to
// [1, MaxHistoryLimit] with 0 meaning DefaultHistoryLimit; negative
// offsets are treated as 0.
func (c *Client) History(ctx context.Context, limit, offset int) *HistoryResponse {
	limit, offset = ClampPage(limit, offset)
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return do[[]model.HistoryItem](ctx, c, "history", http.MethodGet,
		"/api/history?"+q.Encode(), nil)
}

// DeleteHistory removes an analysis from the backend. In-memory copies
// held by the caller are unaffected.
func (c *Client) DeleteHistory(ctx context.Context, id string) *DeleteResponse {
	return do[struct{}](ctx, c, "delete", http.MethodDelete,
		"/api/history/"+url.PathEscape(id), nil)
}

// Perspectives lists the lenses available for the critical analysis.
func (c *Client) Perspectives(ctx context.Context) *PerspectivesResponse {
	return do[[]model.Perspective](ctx, c, "perspectives", http.MethodGet, "/api/perspectives", nil)
}

// AnalyzeCritical requests the stage-2 critical analysis. It does not
// enforce the suitability gate; see pipeline.CheckCritical.
func (c *Client) AnalyzeCritical(ctx context.Context, id, perspective string) *ResultResponse {
	return do[*model.AnalysisResult](ctx, c, "critical", http.MethodPost, "/api/analyze/critical",
		map[string]string{"analysis_id": id, "perspective": perspective})
}

// AnalyzeAdditional requests the stage-3 additional analysis. It does not
// enforce the stage ordering gate; see pipeline.CheckAdditional.
func (c *Client) AnalyzeAdditional(ctx context.Context, id string) *ResultResponse {
	return do[*model.AnalysisResult](ctx, c, "additional", http.MethodPost, "/api/analyze/additional",
		map[string]string{"analysis_id": id})
}

// ClampPage normalizes history paging parameters to what the backend accepts.
func ClampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// do performs one request and folds every failure into the envelope.
func do[T any](ctx context.Context, c *Client, op, method, path string, body any) *Response[T] {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return failure[T](op, 0, MsgInvalidResponse, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return failure[T](op, 0, MsgConnectionFailed, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"op", op,
			"request_id", requestID,
			"error", err,
		)
		return failure[T](op, 0, MsgConnectionFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return failure[T](op, resp.StatusCode, MsgConnectionFailed, fmt.Errorf("read body: %w", err))
	}

	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := backendMessage(data)
		if msg == "" {
			msg = fmt.Sprintf(msgHTTPStatusFormat, resp.StatusCode)
		}
		return failure[T](op, resp.StatusCode, msg,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out Response[T]
	if err := json.Unmarshal(data, &out); err != nil {
		return failure[T](op, resp.StatusCode, MsgInvalidResponse, fmt.Errorf("decode response: %w", err))
	}
	out.StatusCode = resp.StatusCode
	out.op = op
	if !out.Success && out.Error == "" {
		out.Error = MsgUnknownFailure
	}
	return &out
}

// backendMessage extracts a human message from an error body. The backend
// uses the envelope's "error" field; its framework's validation layer uses
// "detail", which may be a string or a list of objects with "msg".
func backendMessage(data []byte) string {
	var body struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	if len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// IsConnectionFailure reports whether err came from a request that never
// received a response.
func IsConnectionFailure(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}
