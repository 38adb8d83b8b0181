package geolib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClientOptions configures NewHTTPClient. Zero values are replaced
// with defaults.
type HTTPClientOptions struct {
	UserAgent string
	Timeout   time.Duration

	// Please see https://pkg.go.dev/golang.org/x/time/rate to get a
	// meaning of these parameters.
	RateLimitInterval time.Duration
	RateLimitBurst    int

	CircuitBreakerOpenThreshold        uint32
	CircuitBreakerHalfOpenTimeout      time.Duration
	CircuitBreakerResetFailuresTimeout time.Duration
}

const (
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second

	defaultUserAgent = "servergeo"
)

type httpClient struct {
	userAgent      string
	timeout        time.Duration
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	callerCtx := req.Context()

	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(callerCtx, h.timeout)
	} else {
		ctx, cancel = context.WithCancel(callerCtx)
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", h.userAgent)

	if err := h.rateLimiter.Wait(ctx); err != nil {
		cancel()

		return nil, fmt.Errorf("cannot wait for rate limiter: %w", err)
	}

	resp, err := h.circuitBreaker.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		resp, err := h.client.Do(req)

		switch {
		case err != nil && callerCtx.Err() != nil:
			// the caller context has ended before upstream answered
			return nil, fmt.Errorf("%w: %w", ErrCircuitBreakerIgnore, err)
		case err != nil:
			return nil, err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			flushResponse(resp.Body)

			return nil, fmt.Errorf("netloc has responded with %s", resp.Status)
		}

		return resp, nil
	})
	if err != nil {
		cancel()

		return nil, err
	}

	resp.Body = cancelOnClose{
		ReadCloser: resp.Body,
		cancel:     cancel,
	}

	return resp, nil
}

// Close stops background timers of the circuit breaker. A client
// should not be used after that.
func (h *httpClient) Close() {
	h.circuitBreaker.stop()
}

type cancelOnClose struct {
	io.ReadCloser

	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()

	return c.ReadCloser.Close()
}

func flushResponse(body io.ReadCloser) {
	io.Copy(io.Discard, body) // nolint: errcheck
	body.Close()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent and a timeout for each request.
//
// Rate limiter is a token bucket: one token each RateLimitInterval,
// at most RateLimitBurst tokens. Free tier of ip-api.com allows 45
// requests per minute, so do not go below 1.4s there.
//
// A meaning of circuit breaker parameters:
//
// CircuitBreakerOpenThreshold - this is a threshold of failures when
// circuit breaker becomes OPEN. So, if you pass 3 here, then after 3
// failures circuit breaker switches into OPEN state and blocks access
// to a target.
//
// CircuitBreakerResetFailuresTimeout - is tightly coupled with
// CircuitBreakerOpenThreshold. Each time period when circuit breaker
// is closed, we reset a failure counter.
//
// CircuitBreakerHalfOpenTimeout - when circuit breaker is open, we
// switch it to HALF_OPEN state after this time period. Within this
// state we allow 1 attempt. If this attempt fails, then it goes into
// OPEN state again. If succeed - goes to CLOSED.
func NewHTTPClient(client *http.Client, opts HTTPClientOptions) ClosableHTTPClient {
	if client == nil {
		client = &http.Client{}
	}

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultHTTPTimeout
	}

	limit := rate.Inf
	if opts.RateLimitInterval > 0 {
		limit = rate.Every(opts.RateLimitInterval)
	}

	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 1
	}

	if opts.CircuitBreakerOpenThreshold == 0 {
		opts.CircuitBreakerOpenThreshold = DefaultCircuitBreakerOpenThreshold
	}

	if opts.CircuitBreakerHalfOpenTimeout == 0 {
		opts.CircuitBreakerHalfOpenTimeout = DefaultCircuitBreakerHalfOpenTimeout
	}

	if opts.CircuitBreakerResetFailuresTimeout == 0 {
		opts.CircuitBreakerResetFailuresTimeout = DefaultCircuitBreakerResetFailuresTimeout
	}

	return &httpClient{
		userAgent:   opts.UserAgent,
		timeout:     opts.Timeout,
		client:      client,
		rateLimiter: rate.NewLimiter(limit, opts.RateLimitBurst),
		circuitBreaker: newCircuitBreaker(opts.CircuitBreakerOpenThreshold,
			opts.CircuitBreakerHalfOpenTimeout,
			opts.CircuitBreakerResetFailuresTimeout),
	}
}
