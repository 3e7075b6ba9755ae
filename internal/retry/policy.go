// Package retry implements the retry policies applied to Azure REST calls.
package retry

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries = 4
	defaultInterval   = 1 * time.Second
	defaultFactor     = 4
)

// Policy decides whether a request should be sent again and how long to wait before doing so.
// attempt is zero based and counts the attempts already made.
type Policy interface {
	ShouldRetry(resp *http.Response, err error, attempt int) (bool, time.Duration)
}

// ExponentialPolicy retries transport errors and transient HTTP status codes, multiplying the
// wait interval by Factor after every backoff. There is no jitter.
type ExponentialPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Interval is the wait before the first retry.
	Interval time.Duration
	// Factor multiplies the interval after each retry.
	Factor int
}

// NewExponentialPolicy returns a policy with four retries, starting at one second and growing by a
// factor of four.
func NewExponentialPolicy() *ExponentialPolicy {
	return &ExponentialPolicy{
		MaxRetries: defaultMaxRetries,
		Interval:   defaultInterval,
		Factor:     defaultFactor,
	}
}

func (p *ExponentialPolicy) ShouldRetry(resp *http.Response, err error, attempt int) (bool, time.Duration) {
	if attempt >= p.MaxRetries {
		return false, 0
	}
	wait := p.backoff(attempt)
	if err != nil {
		return true, wait
	}
	if resp == nil {
		return false, 0
	}
	if !IsRetriableStatus(resp.StatusCode) {
		return false, 0
	}
	if honoursRetryAfter(resp.StatusCode) {
		if after := RetryAfter(resp); after > wait {
			wait = after
		}
	}
	return true, wait
}

// honoursRetryAfter reports whether the server may stretch the wait of a status with Retry-After.
func honoursRetryAfter(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

func (p *ExponentialPolicy) backoff(attempt int) time.Duration {
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.Interval),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(float64(factor)),
		backoff.WithMaxInterval(time.Duration(math.MaxInt64)),
		backoff.WithMaxElapsedTime(0),
	)
	var wait time.Duration
	for i := 0; i <= attempt; i++ {
		wait = b.NextBackOff()
	}
	return wait
}

// IsRetriableStatus reports whether a response status is worth retrying: every 5xx except 501 and
// 505, plus 401, 408 and 429.
func IsRetriableStatus(code int) bool {
	switch code {
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported:
		return false
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}

// RetryAfter returns the wait requested by the server through the Retry-After header, in seconds
// or as an HTTP date. It returns zero when the header is absent or malformed.
func RetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// NoRetryPolicy never retries.
type NoRetryPolicy struct{}

func (NoRetryPolicy) ShouldRetry(*http.Response, error, int) (bool, time.Duration) {
	return false, 0
}
