package arm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/google/uuid"
	"github.com/tmeckel/az-cli/internal/retry"
	"github.com/tmeckel/az-cli/internal/util"
	"go.uber.org/zap"
)

// ForeignHostError is returned when a request would carry the token of the client to a host other
// than its endpoint, e.g. a next link or a continuation token pointing elsewhere.
type ForeignHostError struct {
	Host     string
	Endpoint string
}

func (e *ForeignHostError) Error() string {
	return fmt.Sprintf("refusing to send credentials to %s, which is outside of %s", e.Host, e.Endpoint)
}

// requestOptions travel with a single request through the pipeline.
type requestOptions struct {
	skipAuthorization bool
	allowAnyHost      bool
}

// retryPolicy resends a request according to a retry.Policy. Every attempt runs the remaining
// policies on a clone, so headers and tokens are set again.
type retryPolicy struct {
	policy retry.Policy
}

func (p *retryPolicy) Do(req *policy.Request) (*http.Response, error) {
	return retry.Do(req.Raw().Context(), p.policy, func(ctx context.Context, attempt int) (*http.Response, error) {
		if err := req.RewindBody(); err != nil {
			return nil, retry.Permanent(err)
		}
		return req.Clone(ctx).Next()
	})
}

// requestPolicy stamps every attempt with a client request id and the user agent.
type requestPolicy struct {
	userAgent string
}

func (p *requestPolicy) Do(req *policy.Request) (*http.Response, error) {
	raw := req.Raw()
	raw.Header.Set("x-ms-client-request-id", uuid.NewString())
	if p.userAgent != "" {
		raw.Header.Set("User-Agent", p.userAgent)
	}
	logger := zap.L().Sugar()
	logger.Debugf("%s %s", raw.Method, raw.URL.Redacted())
	resp, err := req.Next()
	if err == nil {
		logger.Debugf("%s %s -> %d", raw.Method, raw.URL.Redacted(), resp.StatusCode)
	}
	return resp, err
}

// authPolicy adds the bearer token. Tokens are only sent to the origin of endpoint unless the
// request allows any host. A 401 response drops the cached token so the next attempt fetches a
// new one.
type authPolicy struct {
	cred     azcore.TokenCredential
	opts     policy.TokenRequestOptions
	endpoint *url.URL
}

func (p *authPolicy) Do(req *policy.Request) (*http.Response, error) {
	var ro requestOptions
	req.OperationValue(&ro)
	raw := req.Raw()
	if ro.skipAuthorization || raw.Header.Get("Authorization") != "" {
		return req.Next()
	}
	if !ro.allowAnyHost && !util.NewURLComparer().SameOrigin(raw.URL, p.endpoint) {
		return nil, retry.Permanent(&ForeignHostError{Host: raw.URL.Host, Endpoint: p.endpoint.String()})
	}
	tok, err := p.cred.GetToken(raw.Context(), p.opts)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	raw.Header.Set("Authorization", "Bearer "+tok.Token)
	resp, err := req.Next()
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := p.cred.(Invalidator); ok {
			inv.Invalidate(p.opts)
		}
	}
	return resp, err
}
