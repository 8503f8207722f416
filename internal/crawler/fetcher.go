package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// FetchReason classifies why a fetch failed after exhausting its retries.
type FetchReason string

// Fetch failure reasons.
const (
	// FetchTimeout means the request deadline expired on every attempt.
	FetchTimeout FetchReason = "timeout"

	// FetchNetworkError means the connection itself failed.
	FetchNetworkError FetchReason = "network-error"

	// FetchHTTPError means the server answered with a non-2xx status.
	FetchHTTPError FetchReason = "http-error"
)

// FetchError is returned by Fetcher.Fetch after all attempts failed.
type FetchError struct {
	// URL is the URL that could not be fetched.
	URL string

	// Reason classifies the last failure.
	Reason FetchReason

	// StatusCode is the last HTTP status, zero if no response was received.
	StatusCode int

	// Attempts is the total number of attempts made.
	Attempts int

	// Err is the underlying error of the last attempt, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.URL, e.Reason, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempt(s): status %d", e.URL, e.Reason, e.Attempts, e.StatusCode)
}

// Unwrap returns the underlying error of the last attempt.
func (e *FetchError) Unwrap() error { return e.Err }

// Response is a successfully fetched page body.
type Response struct {
	// Body is the raw response body, truncated to the configured limit.
	Body []byte

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// ContentType is the value of the Content-Type header.
	ContentType string
}

// DefaultMaxBodySize limits how much of a response body is read.
// 5MB is plenty for HTML pages while preventing memory exhaustion from
// unexpectedly large responses.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Fetcher performs HTTP GETs with a per-request timeout, bounded retries,
// and process-wide polite pacing.
//
// Design decision: A single rate.Limiter paces every attempt, including
// retries, rather than sleeping a fixed delay between retries of one URL.
// This enforces the polite delay between ANY two fetch attempts in the
// process, which is what keeps the crawler from overloading target servers
// even when several workers fetch concurrently. The delay is fixed, not an
// exponential backoff.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent identifies the crawler in request headers.
	userAgent string

	// retries is the number of retries after the initial attempt.
	retries int

	// limiter paces all attempts process-wide.
	limiter *rate.Limiter

	// maxBodySize limits how many bytes of a response body are read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRetries sets how many times a failed fetch is retried. The total
// number of attempts is retries + 1.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithPoliteDelay sets the minimum interval between any two fetch attempts
// across the whole process. Zero disables pacing.
func WithPoliteDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithClient replaces the HTTP client. Mainly useful in tests.
func WithClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   "webcrawler/1.0 (+https://github.com/BijayaThebe/webcrawler)",
		retries:     0,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request against rawURL. Each attempt first waits on
// the shared pacer. On network error, timeout, or non-2xx status the fetch
// is retried up to the configured count; after exhausting all attempts it
// returns a *FetchError classifying the last failure. Context cancellation
// is returned as-is so the caller can distinguish shutdown from failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	attempts := f.retries + 1

	var lastReason FetchReason
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Wait also fails, without touching the context, when the
			// remaining deadline is too short to ever admit the next
			// token. The fetch can never proceed, so report a timeout.
			return nil, &FetchError{
				URL:      rawURL,
				Reason:   FetchTimeout,
				Attempts: attempt + 1,
				Err:      err,
			}
		}

		resp, reason, status, err := f.attempt(ctx, rawURL)
		if err == nil && reason == "" {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastReason, lastStatus, lastErr = reason, status, err
	}

	return nil, &FetchError{
		URL:        rawURL,
		Reason:     lastReason,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

// attempt performs a single GET. A nil error with an empty reason means
// success.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (*Response, FetchReason, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, FetchNetworkError, 0, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyNetError(err), 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, classifyNetError(err), resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, FetchHTTPError, resp.StatusCode, nil
	}

	return &Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, "", resp.StatusCode, nil
}

// classifyNetError separates timeouts from other transport failures.
func classifyNetError(err error) FetchReason {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	return FetchNetworkError
}
