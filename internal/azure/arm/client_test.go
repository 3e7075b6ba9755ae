package arm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/paging"
	"github.com/tmeckel/az-cli/internal/retry"
)

type fakeCredential struct {
	tokens      atomic.Int32
	invalidated atomic.Int32
	err         error
	lastOpts    policy.TokenRequestOptions
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	f.lastOpts = opts
	n := f.tokens.Add(1)
	return azcore.AccessToken{Token: fmt.Sprintf("token-%d", n), ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func (f *fakeCredential) Invalidate(policy.TokenRequestOptions) {
	f.invalidated.Add(1)
}

func newTestClient(t *testing.T, h http.HandlerFunc, cred *fakeCredential) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(cred, Options{
		Endpoint:       srv.URL + "/",
		Scope:          "https://management.core.windows.net//.default",
		TenantID:       "tenant",
		SubscriptionID: "sub-1",
		HTTPClient:     srv.Client(),
		Policy:         &retry.ExponentialPolicy{MaxRetries: 3, Interval: time.Millisecond, Factor: 2},
		UserAgent:      "az-test",
	})
}

func TestDoBuildsRequest(t *testing.T) {
	cred := &fakeCredential{}
	var got *http.Request
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"name":"rg"}`))
	}, cred)

	resp, err := c.Do(context.Background(), Request{
		Method:     http.MethodPut,
		Path:       "/subscriptions/{subscriptionId}/resourcegroups/rg",
		APIVersion: ResourcesAPIVersion,
		Query:      url.Values{"$top": {"5"}},
		Body:       map[string]string{"location": "westeurope"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/subscriptions/sub-1/resourcegroups/rg", got.URL.Path)
	assert.Equal(t, ResourcesAPIVersion, got.URL.Query().Get("api-version"))
	assert.Equal(t, "5", got.URL.Query().Get("$top"))
	assert.Equal(t, "Bearer token-1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "az-test", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get("x-ms-client-request-id"))
	assert.JSONEq(t, `{"location":"westeurope"}`, string(body))
	assert.Equal(t, []string{"https://management.core.windows.net//.default"}, cred.lastOpts.Scopes)
	assert.Equal(t, "tenant", cred.lastOpts.TenantID)

	var rg ResourceGroup
	require.NoError(t, resp.Decode(&rg))
	assert.Equal(t, "rg", rg.Name)
}

func TestDoKeepsExplicitAPIVersion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"2020-01-01"}, r.URL.Query()["api-version"])
	}, &fakeCredential{})

	_, err := c.Do(context.Background(), Request{Path: "providers?api-version=2020-01-01", APIVersion: "2021-01-01"})
	require.NoError(t, err)
}

func TestDoSkipAuthorization(t *testing.T) {
	cred := &fakeCredential{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}, cred)

	_, err := c.Do(context.Background(), Request{Path: "/", SkipAuthorization: true})
	require.NoError(t, err)
	assert.Zero(t, cred.tokens.Load())
}

func TestDoDecodesErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ms-request-id", "req-1")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"ResourceGroupNotFound","message":"Resource group 'rg' could not be found."}}`))
	}, &fakeCredential{})

	_, err := c.Do(context.Background(), Request{Path: "/subscriptions/x/resourcegroups/rg", APIVersion: ResourcesAPIVersion})
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.True(t, respErr.NotFound())
	assert.Equal(t, "ResourceGroupNotFound", respErr.Code)
	assert.Equal(t, "req-1", respErr.RequestID)
	assert.Contains(t, err.Error(), "(ResourceGroupNotFound) Resource group 'rg' could not be found.")
}

func TestDoDecodesFlatErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidParameter","message":"bad"}`))
	}, &fakeCredential{})

	_, err := c.Do(context.Background(), Request{Path: "/"})
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "InvalidParameter", respErr.Code)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
}

func TestDoRetriesAndRefreshesTokenOnUnauthorized(t *testing.T) {
	cred := &fakeCredential{}
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
	}, cred)

	_, err := c.Do(context.Background(), Request{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), cred.invalidated.Load())
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}, &fakeCredential{})

	resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: `{"a":1}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoDoesNotRetryCredentialErrors(t *testing.T) {
	errAuth := errors.New("interactive authentication required")
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, &fakeCredential{err: errAuth})

	_, err := c.Do(context.Background(), Request{Path: "/"})
	require.ErrorIs(t, err, errAuth)
	assert.Zero(t, calls.Load())
}

func TestGetAndPager(t *testing.T) {
	var srvURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"value":    []ResourceGroup{{Name: "a"}, {Name: "b"}},
				"nextLink": srvURL + "/subscriptions/sub-1/resourcegroups?page=2&api-version=" + ResourcesAPIVersion,
			})
		case "2":
			assert.Equal(t, ResourcesAPIVersion, r.URL.Query().Get("api-version"))
			_ = json.NewEncoder(w).Encode(map[string]any{"value": []ResourceGroup{{Name: "c"}}})
		}
	}, &fakeCredential{})
	srvURL = c.Endpoint()

	p, err := NewPager[ResourceGroup](c, "/subscriptions/{subscriptionId}/resourcegroups", ResourcesAPIVersion, nil, paging.Options{})
	require.NoError(t, err)
	all, err := p.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[2].Name)

	page, err := Get[paging.Page[ResourceGroup]](context.Background(), c, "/subscriptions/{subscriptionId}/resourcegroups", ResourcesAPIVersion)
	require.NoError(t, err)
	assert.Len(t, page.Value, 2)
}

func TestDoRefusesTokenForForeignHost(t *testing.T) {
	var leaked atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			leaked.Add(1)
		}
	}))
	defer foreign.Close()

	cred := &fakeCredential{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, cred)

	_, err := c.Do(context.Background(), Request{Path: foreign.URL + "/subscriptions"})
	var hostErr *ForeignHostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, foreign.Listener.Addr().String(), hostErr.Host)
	assert.Zero(t, leaked.Load())
	assert.Zero(t, cred.tokens.Load())
}

func TestDoAllowAnyHost(t *testing.T) {
	var auth string
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer foreign.Close()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, &fakeCredential{})
	_, err := c.Do(context.Background(), Request{Path: foreign.URL + "/v1.0/me", AllowAnyHost: true})
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", auth)
}

func TestDoSendsTokenToAbsoluteEndpointURL(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}, &fakeCredential{})

	_, err := c.Do(context.Background(), Request{Path: c.Endpoint() + "/subscriptions"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", auth)
}

func TestPagerStopsAtForeignNextLink(t *testing.T) {
	var leaked atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			leaked.Add(1)
		}
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer foreign.Close()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value":    []ResourceGroup{{Name: "a"}},
			"nextLink": foreign.URL + "/subscriptions/sub-1/resourcegroups?page=2",
		})
	}, &fakeCredential{})

	p, err := NewPager[ResourceGroup](c, "/subscriptions/{subscriptionId}/resourcegroups", ResourcesAPIVersion, nil, paging.Options{})
	require.NoError(t, err)
	_, err = p.All(context.Background())
	var hostErr *ForeignHostError
	require.ErrorAs(t, err, &hostErr)
	assert.Zero(t, leaked.Load())
}

func TestNewPagerRejectsForeignToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}, &fakeCredential{})

	token := paging.Token{NextLink: "https://attacker.example.com/subscriptions?page=2"}.Encode()
	_, err := NewPager[ResourceGroup](c, "/subscriptions/{subscriptionId}/resourcegroups", ResourcesAPIVersion, nil, paging.Options{Token: token})
	require.ErrorIs(t, err, paging.ErrInvalidToken)
	assert.Contains(t, err.Error(), "attacker.example.com")

	token = paging.Token{NextLink: c.Endpoint() + "/subscriptions/sub-1/resourcegroups?page=2", Offset: 1}.Encode()
	_, err = NewPager[ResourceGroup](c, "/subscriptions/{subscriptionId}/resourcegroups", ResourcesAPIVersion, nil, paging.Options{Token: token})
	require.NoError(t, err)
}
