// Package arm is a small REST client for Azure Resource Manager built on the azcore pipeline.
// Requests carry a bearer token, the api-version and a client request id, are retried according to
// a retry policy and decode the ARM error envelope into ResponseError.
package arm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/tmeckel/az-cli/internal/paging"
	"github.com/tmeckel/az-cli/internal/retry"
	"github.com/tmeckel/az-cli/internal/util"
)

// SubscriptionPlaceholder is replaced with the subscription id of the client in request paths.
const SubscriptionPlaceholder = "{subscriptionId}"

type Request struct {
	Method string
	// Path is either an absolute URL or a path relative to the endpoint of the client.
	Path       string
	APIVersion string
	Query      url.Values
	Header     http.Header
	// Body is sent as is when it is []byte, json.RawMessage or string, and encoded as JSON otherwise.
	Body any
	// SkipAuthorization omits the Authorization header.
	SkipAuthorization bool
	// AllowAnyHost sends the token to absolute URLs outside the endpoint of the client. Only set
	// it for URLs given by the user.
	AllowAnyHost bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

//go:generate mockgen -destination=../../mocks/arm_client_mock.go -package=mocks github.com/tmeckel/az-cli/internal/azure/arm Client

// Client sends requests to Azure Resource Manager.
type Client interface {
	Endpoint() string
	SubscriptionID() string
	Do(ctx context.Context, req Request) (*Response, error)
}

// Invalidator is implemented by credentials that cache tokens. The client calls it when the service
// rejects a token.
type Invalidator interface {
	Invalidate(opts policy.TokenRequestOptions)
}

type Options struct {
	Endpoint       string
	Scope          string
	TenantID       string
	SubscriptionID string
	HTTPClient     *http.Client
	Policy         retry.Policy
	UserAgent      string
}

type client struct {
	opts     Options
	pipeline runtime.Pipeline
}

// NewClient returns a client for opts.Endpoint. A nil Policy disables retries; a nil HTTPClient
// uses http.DefaultClient. The retries of azcore are turned off in favour of Policy.
func NewClient(cred azcore.TokenCredential, opts Options) Client {
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		endpoint = &url.URL{}
	}
	pl := runtime.NewPipeline("arm", "", runtime.PipelineOptions{
		PerCall: []policy.Policy{&retryPolicy{policy: opts.Policy}},
		PerRetry: []policy.Policy{
			&requestPolicy{userAgent: opts.UserAgent},
			&authPolicy{
				cred:     cred,
				opts:     policy.TokenRequestOptions{Scopes: []string{opts.Scope}, TenantID: opts.TenantID},
				endpoint: endpoint,
			},
		},
	}, &policy.ClientOptions{
		Transport: opts.HTTPClient,
		Retry:     policy.RetryOptions{MaxRetries: -1},
		Telemetry: policy.TelemetryOptions{Disabled: true},
	})
	return &client{opts: opts, pipeline: pl}
}

func (c *client) Endpoint() string {
	return c.opts.Endpoint
}

func (c *client) SubscriptionID() string {
	return c.opts.SubscriptionID
}

// resolve resolves path against the endpoint and substitutes the subscription placeholder.
func (c *client) resolve(path string, apiVersion string, query url.Values) (*url.URL, error) {
	path = strings.ReplaceAll(path, SubscriptionPlaceholder, c.opts.SubscriptionID)
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.opts.Endpoint + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", raw, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if apiVersion != "" && !q.Has("api-version") {
		q.Set("api-version", apiVersion)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, nil
	}
}

func (c *client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	u, err := c.resolve(r.Path, r.APIVersion, r.Query)
	if err != nil {
		return nil, err
	}
	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}
	req, err := runtime.NewRequest(ctx, r.Method, u.String())
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", u.Redacted(), err)
	}
	raw := req.Raw()
	for k, vs := range r.Header {
		raw.Header[k] = vs
	}
	if raw.Header.Get("Accept") == "" {
		raw.Header.Set("Accept", "application/json")
	}
	if body != nil {
		contentType := raw.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		if err := req.SetBody(streaming.NopCloser(bytes.NewReader(body)), contentType); err != nil {
			return nil, err
		}
	}
	req.SetOperationValue(requestOptions{skipAuthorization: r.SkipAuthorization, allowAnyHost: r.AllowAnyHost})

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newResponseError(resp, data)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get fetches path and decodes the result.
func Get[T any](ctx context.Context, c Client, path, apiVersion string) (T, error) {
	var v T
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, APIVersion: apiVersion})
	if err != nil {
		return v, err
	}
	err = resp.Decode(&v)
	return v, err
}

// NewPager returns a pager over a list operation. Next links are followed as returned by the
// service; they already carry the api-version.
func NewPager[T any](c Client, path, apiVersion string, query url.Values, opts paging.Options) (*paging.Pager[T], error) {
	if err := checkToken(c, opts.Token); err != nil {
		return nil, err
	}
	return paging.New(func(ctx context.Context, link string) (paging.Page[T], error) {
		req := Request{Method: http.MethodGet, Path: path, APIVersion: apiVersion, Query: query}
		if link != "" {
			req = Request{Method: http.MethodGet, Path: link}
		}
		var page paging.Page[T]
		resp, err := c.Do(ctx, req)
		if err != nil {
			return page, err
		}
		err = resp.Decode(&page)
		return page, err
	}, opts)
}

// checkToken rejects continuation tokens whose next link leaves the endpoint of c.
func checkToken(c Client, token string) error {
	tok, err := paging.ParseToken(token)
	if err != nil || tok.NextLink == "" {
		// paging.New reports malformed tokens
		return nil
	}
	link, err := url.Parse(tok.NextLink)
	if err != nil {
		return fmt.Errorf("%w: %v", paging.ErrInvalidToken, err)
	}
	if !link.IsAbs() {
		return nil
	}
	endpoint, err := url.Parse(c.Endpoint())
	if err != nil || !util.NewURLComparer().SameOrigin(link, endpoint) {
		return fmt.Errorf("%w: next link %s is outside of %s", paging.ErrInvalidToken, link.Host, c.Endpoint())
	}
	return nil
}
