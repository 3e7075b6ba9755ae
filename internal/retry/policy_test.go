package retry

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(code int) *http.Response {
	return &http.Response{StatusCode: code, Header: http.Header{}}
}

func TestExponentialPolicyDefaults(t *testing.T) {
	p := NewExponentialPolicy()
	assert.Equal(t, 4, p.MaxRetries)
	assert.Equal(t, time.Second, p.Interval)
	assert.Equal(t, 4, p.Factor)
}

func TestExponentialPolicyStatusBuckets(t *testing.T) {
	p := NewExponentialPolicy()

	tests := []struct {
		code  int
		retry bool
	}{
		{http.StatusOK, false},
		{http.StatusMovedPermanently, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
		{http.StatusRequestTimeout, true},
		{http.StatusConflict, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusNotImplemented, false},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusHTTPVersionNotSupported, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			retry, _ := p.ShouldRetry(response(tt.code), nil, 0)
			assert.Equal(t, tt.retry, retry)
		})
	}
}

func TestExponentialPolicyBackoffGrows(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 4, Interval: time.Second, Factor: 4}

	var waits []time.Duration
	for attempt := 0; attempt < 4; attempt++ {
		retry, wait := p.ShouldRetry(response(http.StatusServiceUnavailable), nil, attempt)
		require.True(t, retry)
		waits = append(waits, wait)
	}

	assert.Equal(t, []time.Duration{time.Second, 4 * time.Second, 16 * time.Second, 64 * time.Second}, waits)
}

func TestExponentialPolicyStopsAtMaxRetries(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 2, Interval: time.Millisecond, Factor: 2}

	retry, _ := p.ShouldRetry(nil, errors.New("connection reset"), 1)
	assert.True(t, retry)

	retry, _ = p.ShouldRetry(nil, errors.New("connection reset"), 2)
	assert.False(t, retry)
}

func TestExponentialPolicyNilResponseWithoutError(t *testing.T) {
	p := NewExponentialPolicy()
	retry, wait := p.ShouldRetry(nil, nil, 0)
	assert.False(t, retry)
	assert.Zero(t, wait)
}

func TestExponentialPolicyHonoursRetryAfter(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 4, Interval: time.Millisecond, Factor: 2}
	resp := response(http.StatusTooManyRequests)
	resp.Header.Set("Retry-After", "7")

	retry, wait := p.ShouldRetry(resp, nil, 0)
	require.True(t, retry)
	assert.Equal(t, 7*time.Second, wait)
}

func TestExponentialPolicyRetryAfterOnlyFor429And503(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 4, Interval: time.Millisecond, Factor: 2}

	for _, code := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		resp := response(code)
		resp.Header.Set("Retry-After", "3")
		retry, wait := p.ShouldRetry(resp, nil, 0)
		require.True(t, retry)
		assert.Equal(t, 3*time.Second, wait, http.StatusText(code))
	}

	for _, code := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusUnauthorized} {
		resp := response(code)
		resp.Header.Set("Retry-After", "3")
		retry, wait := p.ShouldRetry(resp, nil, 0)
		require.True(t, retry)
		assert.Equal(t, time.Millisecond, wait, http.StatusText(code))
	}
}

func TestExponentialPolicyRetryAfterNeverShortensWait(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 4, Interval: 10 * time.Second, Factor: 2}
	resp := response(http.StatusServiceUnavailable)
	resp.Header.Set("Retry-After", "1")

	_, wait := p.ShouldRetry(resp, nil, 1)
	assert.Equal(t, 20*time.Second, wait)
}

func TestExponentialPolicyFactorBelowOne(t *testing.T) {
	p := &ExponentialPolicy{MaxRetries: 4, Interval: time.Second, Factor: 0}

	_, wait := p.ShouldRetry(nil, errors.New("reset"), 3)
	assert.Equal(t, time.Second, wait)
}

func TestRetryAfter(t *testing.T) {
	resp := response(http.StatusServiceUnavailable)
	assert.Zero(t, RetryAfter(resp))

	resp.Header.Set("Retry-After", "not-a-number")
	assert.Zero(t, RetryAfter(resp))

	resp.Header.Set("Retry-After", "-3")
	assert.Zero(t, RetryAfter(resp))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, RetryAfter(resp))

	assert.Zero(t, RetryAfter(nil))
}

func TestNoRetryPolicy(t *testing.T) {
	retry, wait := NoRetryPolicy{}.ShouldRetry(response(http.StatusServiceUnavailable), nil, 0)
	assert.False(t, retry)
	assert.Zero(t, wait)
}
