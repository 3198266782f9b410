// Package httpretry retries HTTP requests that fail transiently.
package httpretry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultAttempts is the total number of tries, including the first.
const DefaultAttempts = 3

const (
	baseDelay = 200 * time.Millisecond
	maxDelay  = 5 * time.Second
)

// Delay is the exponential backoff before retry number attempt (0-based),
// capped at five seconds.
func Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 8 {
		return maxDelay
	}
	d := baseDelay << attempt
	if d > maxDelay {
		d = maxDelay
	}
	return d
}

// Retryable reports whether a response status is worth retrying.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Client wraps an http.Client with retry on transport errors, 429 and 5xx.
type Client struct {
	HTTP     *http.Client
	Attempts int

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a retrying client with the given timeout per request.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Attempts: DefaultAttempts,
		sleep:    sleepCtx,
	}
}

// Do sends the request built by newReq, rebuilding it for every attempt so
// the body can be replayed. The final response is returned as is, even when
// its status is retryable; the caller owns its body.
func (c *Client) Do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, lastDelay(lastErr, attempt-1)); err != nil {
				return nil, err
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !Retryable(resp.StatusCode) || attempt == attempts-1 {
			return resp, nil
		}

		lastErr = &statusError{status: resp.StatusCode, retryAfter: retryAfter(resp)}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	return nil, fmt.Errorf("send request: %w", lastErr)
}

type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

// lastDelay honours a Retry-After header when it is shorter than the cap.
func lastDelay(err error, attempt int) time.Duration {
	if se, ok := err.(*statusError); ok && se.retryAfter > 0 && se.retryAfter <= maxDelay {
		return se.retryAfter
	}
	return Delay(attempt)
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
