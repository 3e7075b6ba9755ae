package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SendFunc performs a single attempt. attempt is zero for the first call.
type SendFunc func(ctx context.Context, attempt int) (*http.Response, error)

// ErrBodyNotRewindable is returned by Transport when a request that carries a body without
// GetBody would have to be sent a second time.
var ErrBodyNotRewindable = errors.New("retry: request body cannot be rewound")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps an error returned by a SendFunc so that Do returns it without consulting the
// policy. Do hands back the unwrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls send until the policy gives up. The body of every response that is retried is drained
// and closed; the last response is returned to the caller untouched.
func Do(ctx context.Context, p Policy, send SendFunc) (*http.Response, error) {
	if p == nil {
		p = NoRetryPolicy{}
	}
	logger := zap.L().Sugar()
	for attempt := 0; ; attempt++ {
		resp, err := send(ctx, attempt)
		var perm *permanentError
		if errors.As(err, &perm) {
			return nil, perm.err
		}
		if ctx.Err() != nil {
			if resp != nil && err == nil {
				return resp, nil
			}
			return nil, ctx.Err()
		}
		retry, wait := p.ShouldRetry(resp, err, attempt)
		if !retry {
			return resp, err
		}
		if resp != nil {
			logger.Debugf("retrying %s after status %d (attempt %d, wait %s)",
				describe(resp.Request), resp.StatusCode, attempt+1, wait)
			discard(resp)
		} else {
			logger.Debugf("retrying after error %v (attempt %d, wait %s)", err, attempt+1, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func discard(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func describe(req *http.Request) string {
	if req == nil {
		return "request"
	}
	return req.Method + " " + redact(req)
}

func redact(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	if u.RawQuery != "" {
		q := u.Query()
		if q.Has("sig") {
			q.Set("sig", "REDACTED")
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// Transport is an http.RoundTripper that resends requests according to Policy.
type Transport struct {
	Base   http.RoundTripper
	Policy Policy
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper, p Policy) *Transport {
	return &Transport{Base: base, Policy: p}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	hasBody := req.Body != nil && req.Body != http.NoBody
	if hasBody && req.GetBody == nil {
		return t.base().RoundTrip(req)
	}
	return Do(req.Context(), t.Policy, func(ctx context.Context, attempt int) (*http.Response, error) {
		r := req
		if attempt > 0 {
			r = req.Clone(ctx)
			if hasBody {
				body, err := req.GetBody()
				if err != nil {
					return nil, Permanent(errors.Join(ErrBodyNotRewindable, err))
				}
				r.Body = body
			}
		}
		zap.L().Sugar().Debugf("%s %s", r.Method, redact(r))
		resp, err := t.base().RoundTrip(r)
		if err == nil {
			zap.L().Sugar().Debugf("%s %s -> %d", r.Method, redact(r), resp.StatusCode)
		}
		return resp, err
	})
}
