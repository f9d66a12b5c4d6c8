// Package external provides the boundary between relay logic and third-party
// HTTP APIs. All outbound calls go through BaseClient, which applies the same
// resilience rules everywhere: circuit breaking, request ID propagation, a
// fixed User-Agent and error mapping.
//
// BaseClient makes exactly one attempt per call. A failed notification is
// reported back to the sender instead of being retried here.
package external

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"slskdrelay/internal/types"
)

// RequestIDHeader carries the inbound request ID on outbound calls.
const RequestIDHeader = "X-Request-Id"

// Breaker defaults. The breaker opens after more than five consecutive
// failures and half-opens again after the cool-down.
const (
	breakerInterval     = 60 * time.Second
	breakerCooldown     = 30 * time.Second
	breakerMaxFailures  = 5
	breakerHalfOpenReqs = 1
)

// BaseClient wraps an *http.Client and a circuit breaker. Provider sinks
// (Discord) hold a BaseClient rather than a bare http.Client.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBreakerSettings returns the breaker configuration used by NewBaseClient.
func NewBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenReqs,
		Interval:    breakerInterval,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > breakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
}

// NewBaseClient creates a BaseClient with the given http client, circuit
// breaker name and user agent string.
func NewBaseClient(httpClient *http.Client, breakerName string, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](NewBreakerSettings(breakerName))
	return NewBaseClientWithBreaker(httpClient, cb, userAgent)
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided circuit
// breaker. This is useful for testing or when sharing a breaker across clients.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	userAgent string,
) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
	}
}

// Do executes the HTTP request once with:
//  1. Request ID injection (X-Request-Id from context)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping (429 and 5xx count as failures)
//  4. Error mapping to types.AppError
//
// Whenever the upstream answered, Do returns the response with a nil error,
// whatever its status; the caller classifies it and must close the body.
// An error is returned only when no response exists: the breaker is open,
// the request timed out, or the transport failed.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if requestID := types.GetRequestID(req.Context()); requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	if resp != nil {
		return resp, nil
	}
	return nil, mapError(err)
}

// BreakerState reports the current circuit breaker state.
func (c *BaseClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerName returns the name the breaker was created with.
func (c *BaseClient) BreakerName() string {
	return c.breaker.Name()
}

// mapError translates transport-level failures into AppErrors.
func mapError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			"circuit breaker is open; upstream service unavailable",
			err,
		)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return types.NewAppError(
			types.ErrCodeUpstreamTimeout,
			"upstream request timed out",
			err,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamUnavailable,
		"upstream request failed",
		err,
	)
}
