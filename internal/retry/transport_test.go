package retry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(retries int) *ExponentialPolicy {
	return &ExponentialPolicy{MaxRetries: retries, Interval: time.Millisecond, Factor: 2}
}

func TestTransportRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy(4))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransportReturnsLastResponseWhenExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy(2))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransportDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy(4))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransportResendsBody(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy(3))}
	resp, err := client.Post(srv.URL, "application/json", bytes.NewBufferString(`{"a":1}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{`{"a":1}`, `{"a":1}`}, bodies)
}

func TestTransportSkipsRetryForUnrewindableBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPut, srv.URL, io.NopCloser(bytes.NewBufferString("data")))
	require.NoError(t, err)
	req.GetBody = nil

	resp, err := NewTransport(nil, fastPolicy(3)).RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRetriesTransportErrors(t *testing.T) {
	errReset := errors.New("connection reset by peer")
	attempts := 0

	resp, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context, attempt int) (*http.Response, error) {
		assert.Equal(t, attempts, attempt)
		attempts++
		if attempt < 2 {
			return nil, errReset
		}
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestDoReturnsErrorWhenExhausted(t *testing.T) {
	errReset := errors.New("connection reset by peer")

	_, err := Do(context.Background(), fastPolicy(1), func(ctx context.Context, attempt int) (*http.Response, error) {
		return nil, errReset
	})

	require.ErrorIs(t, err, errReset)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &ExponentialPolicy{MaxRetries: 4, Interval: time.Hour, Factor: 1}

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(ctx context.Context, attempt int) (*http.Response, error) {
			return nil, errors.New("boom")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoWithNilPolicySendsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), nil, func(ctx context.Context, attempt int) (*http.Response, error) {
		calls++
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	errCredential := errors.New("no credential")
	calls := 0

	_, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context, attempt int) (*http.Response, error) {
		calls++
		return nil, Permanent(errCredential)
	})

	require.Equal(t, errCredential, err)
	assert.Equal(t, 1, calls)
}
