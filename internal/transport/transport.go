// Package transport performs the HTTP round trips for the JMAP and CardDAV
// clients: authentication headers, request pacing, status mapping, logging,
// and tracing. It knows nothing about method calls or vCards.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/jmaptools/fastmail-cli/internal/apperr"
	"github.com/jmaptools/fastmail-cli/internal/tracing"
)

// RequestTimeout bounds one full round trip, including body read.
const RequestTimeout = 30 * time.Second

const userAgent = "fastmail-cli"

// Result is the outcome of a completed round trip. Any HTTP status is a
// Result; errors are reserved for requests that never completed.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is an authenticated HTTP client. Construct with NewBearer or
// NewBasic; the zero value is not usable.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	authorize  func(*http.Request)
}

// NewBearer returns a client that authenticates with an API token.
func NewBearer(token string, logger *slog.Logger) *Client {
	return newClient(logger, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
}

// NewBasic returns a client that authenticates with a username and app
// password, as CardDAV requires.
func NewBasic(username, password string, logger *slog.Logger) *Client {
	return newClient(logger, func(req *http.Request) {
		req.SetBasicAuth(username, password)
	})
}

func newClient(logger *slog.Logger, authorize func(*http.Request)) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: RequestTimeout},
		// Steady 4 requests/second with room for a short burst. Fastmail
		// throttles well above this; the limiter keeps tool loops polite.
		limiter:   rate.NewLimiter(rate.Limit(4), 8),
		logger:    logger,
		authorize: authorize,
	}
}

// Options carries the optional parts of a request.
type Options struct {
	Body        []byte
	ContentType string
	Depth       string // WebDAV Depth header, set when non-empty
	Accept      string
}

// Do sends one request and returns the result for any status code. It waits
// for the rate limiter, applies authentication, and honors ctx cancellation.
func (c *Client) Do(ctx context.Context, method, url string, opts Options) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	ctx, span := tracing.StartSpan(ctx, "HTTP "+method,
		attribute.String("http.method", method),
		attribute.String("http.url", url),
	)
	defer span.End()

	var bodyReader io.Reader
	if opts.Body != nil {
		bodyReader = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	if opts.Depth != "" {
		req.Header.Set("Depth", opts.Depth)
	}
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}
	c.authorize(req)

	start := time.Now()
	c.logger.DebugContext(ctx, "HTTP request",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("body_bytes", len(opts.Body)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		c.logger.WarnContext(ctx, "HTTP request failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	span.SetAttributes(tracing.HTTPStatus(resp.StatusCode))
	c.logger.DebugContext(ctx, "HTTP response",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// PostJSON sends a JSON body and returns the response body, mapping
// non-success statuses to the error taxonomy.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) ([]byte, error) {
	res, err := c.Do(ctx, http.MethodPost, url, Options{
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if err := MapStatus(res, "Token expired or invalid"); err != nil {
		return nil, err
	}
	return res.Body, nil
}

// Get fetches url and returns the response body, mapping non-success
// statuses to the error taxonomy.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.Do(ctx, http.MethodGet, url, Options{})
	if err != nil {
		return nil, err
	}
	if err := MapStatus(res, "Token expired or invalid"); err != nil {
		return nil, err
	}
	return res.Body, nil
}

// MapStatus translates an HTTP status into the error taxonomy: 401 is an
// invalid token (described by invalidTokenDetail), 429 is rate limiting,
// 5xx is a server error. Success statuses map to nil.
func MapStatus(res *Result, invalidTokenDetail string) error {
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusUnauthorized:
		return apperr.InvalidToken(invalidTokenDetail)
	case res.StatusCode == http.StatusTooManyRequests:
		return apperr.RateLimited()
	case res.StatusCode >= 500:
		return apperr.Server(fmt.Sprintf("%d", res.StatusCode))
	default:
		return apperr.Server(fmt.Sprintf("unexpected status %d", res.StatusCode))
	}
}
