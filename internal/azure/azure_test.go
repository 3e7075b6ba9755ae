package azure

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/download"
	"github.com/tmeckel/az-cli/internal/profile"
	"github.com/zalando/go-keyring"
)

func TestFindCloud(t *testing.T) {
	c, err := FindCloud("")
	require.NoError(t, err)
	assert.Equal(t, "AzureCloud", c.Name)
	assert.Equal(t, "https://management.azure.com/", c.ResourceManager)
	assert.Equal(t, "https://management.core.windows.net//.default", c.ARMScope())
	assert.Equal(t, "https://acct.blob.core.windows.net/", c.BlobEndpoint("acct"))

	c, err = FindCloud("azurechinacloud")
	require.NoError(t, err)
	assert.Equal(t, "AzureChinaCloud", c.Name)
	assert.Equal(t, "https://acct.blob.core.chinacloudapi.cn/", c.BlobEndpoint("acct"))

	_, err = FindCloud("Moon")
	var notFound *CloudNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Moon", notFound.Name)
}

func TestCloudsMarksActive(t *testing.T) {
	clouds := Clouds("AzureUSGovernment")
	require.Len(t, clouds, 3)
	for _, c := range clouds {
		assert.Equal(t, c.Name == "AzureUSGovernment", c.IsActive, c.Name)
	}
}

func TestScopeForResource(t *testing.T) {
	assert.Equal(t, "https://vault.azure.net/.default", ScopeForResource("https://vault.azure.net"))
	assert.Equal(t, "https://vault.azure.net/.default", ScopeForResource("https://vault.azure.net/.default"))
}

type countingCredential struct {
	calls atomic.Int32
	err   error
}

func (c *countingCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	n := c.calls.Add(1)
	if c.err != nil {
		return azcore.AccessToken{}, c.err
	}
	return azcore.AccessToken{Token: fmt.Sprintf("token-%d", n), ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestCachingCredential(t *testing.T) {
	inner := &countingCredential{}
	cache := profile.NewTokenCache(filepath.Join(t.TempDir(), "tokens.json"))
	cred := NewCachingCredential(inner, cache, "t1", "alice@contoso.com")
	opts := policy.TokenRequestOptions{Scopes: []string{"https://management.core.windows.net//.default"}}

	tok, err := cred.GetToken(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.Token)

	tok, err = cred.GetToken(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.Token)
	assert.Equal(t, int32(1), inner.calls.Load())

	// a different tenant is a different cache entry
	tok, err = cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: opts.Scopes, TenantID: "t2"})
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok.Token)

	cred.Invalidate(opts)
	tok, err = cred.GetToken(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "token-3", tok.Token)
}

func TestCachingCredentialPassesErrors(t *testing.T) {
	inner := &countingCredential{err: errors.New("AADSTS7000215: invalid client secret")}
	cache := profile.NewTokenCache(filepath.Join(t.TempDir(), "tokens.json"))
	cred := NewCachingCredential(inner, cache, "t1", "app")

	_, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{"s"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AADSTS7000215")
	assert.NotErrorIs(t, err, ErrLoginRequired)
}

type fakeSecrets map[string]string

func (f fakeSecrets) Get(tenantID, clientID string) (string, error) {
	s, ok := f[tenantID+"/"+clientID]
	if !ok {
		return "", profile.ErrSecretNotFound
	}
	return s, nil
}

func (f fakeSecrets) Set(tenantID, clientID, secret string, _ bool) error {
	f[tenantID+"/"+clientID] = secret
	return nil
}

func (f fakeSecrets) Delete(tenantID, clientID string) error {
	delete(f, tenantID+"/"+clientID)
	return nil
}

func TestLoginOptionsFor(t *testing.T) {
	secrets := fakeSecrets{"t1/app-id": "s3cret"}

	tests := []struct {
		name    string
		user    profile.User
		want    LoginOptions
		wantErr bool
	}{
		{
			name: "user",
			user: profile.User{Name: "alice@contoso.com", Type: profile.UserTypeUser},
			want: LoginOptions{Type: profile.UserTypeUser, TenantID: "t1"},
		},
		{
			name: "service principal",
			user: profile.User{Name: "app-id", Type: profile.UserTypeServicePrincipal},
			want: LoginOptions{Type: profile.UserTypeServicePrincipal, TenantID: "t1", Username: "app-id", Password: "s3cret"},
		},
		{
			name:    "service principal without secret",
			user:    profile.User{Name: "other", Type: profile.UserTypeServicePrincipal},
			wantErr: true,
		},
		{
			name: "system assigned identity",
			user: profile.User{Name: profile.AssignedIdentitySystem, Type: profile.UserTypeServicePrincipal, AssignedIdentityInfo: "MSI"},
			want: LoginOptions{Type: profile.AssignedIdentitySystem, TenantID: "t1"},
		},
		{
			name: "user assigned identity",
			user: profile.User{Name: profile.AssignedIdentityUser, Type: profile.UserTypeServicePrincipal, AssignedIdentityInfo: "MSIClient-1234"},
			want: LoginOptions{Type: profile.AssignedIdentityUser, TenantID: "t1", IdentityClientID: "1234"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoginOptionsFor(profile.Subscription{ID: "s", TenantID: "t1", User: tt.user}, secrets, nil)
			if tt.wantErr {
				require.ErrorIs(t, err, profile.ErrSecretNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stubMSALCache(t *testing.T) {
	t.Helper()
	orig := msalCache
	msalCache = func() (azidentity.Cache, error) { return azidentity.Cache{}, nil }
	t.Cleanup(func() { msalCache = orig })
}

func TestCredentialForUserUsesStoredRecord(t *testing.T) {
	stubMSALCache(t)
	f := newTestFactory(t)
	alice := profile.User{Name: "alice@contoso.com", Type: profile.UserTypeUser}
	sub := profile.Subscription{ID: "sub1", Name: "Dev", State: profile.StateEnabled, TenantID: "t1", User: alice}
	require.NoError(t, f.profile.Replace(alice, []profile.Subscription{sub}))
	record := azidentity.AuthenticationRecord{
		Authority:     "login.microsoftonline.com",
		ClientID:      CLIClientID,
		HomeAccountID: "oid.home",
		TenantID:      "home",
		Username:      alice.Name,
		Version:       "1.0",
	}
	require.NoError(t, f.profile.AuthRecords().Put(alice.Name, record))

	opts, err := LoginOptionsFor(sub, f.profile.Secrets(), f.profile.AuthRecords())
	require.NoError(t, err)
	assert.Equal(t, LoginOptions{Type: profile.UserTypeUser, TenantID: "t1", Record: record}, opts)

	c, _ := FindCloud("")
	o := deviceCodeOptions(c, opts)
	assert.Equal(t, record, o.AuthenticationRecord)
	assert.Equal(t, "t1", o.TenantID)
	assert.Equal(t, CLIClientID, o.ClientID)
	assert.True(t, o.DisableAutomaticAuthentication)

	cred, err := CredentialFor(c, sub, f.profile)
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestDeviceCodeOptionsWithoutPersistentCache(t *testing.T) {
	orig := msalCache
	msalCache = func() (azidentity.Cache, error) { return azidentity.Cache{}, errors.New("no keyring") }
	t.Cleanup(func() { msalCache = orig })

	c, _ := FindCloud("")
	o := deviceCodeOptions(c, LoginOptions{Type: profile.UserTypeUser, Interactive: true})
	assert.Equal(t, OrganizationsTenant, o.TenantID)
	assert.False(t, o.DisableAutomaticAuthentication)
	assert.Equal(t, azidentity.Cache{}, o.Cache)
}

func TestSaveRecordOnlyForUsers(t *testing.T) {
	f := newTestFactory(t)
	record := azidentity.AuthenticationRecord{Username: "alice@contoso.com", Version: "1.0"}

	require.NoError(t, f.saveRecord(profile.User{Name: "app-id", Type: profile.UserTypeServicePrincipal}, record))
	_, ok := f.profile.AuthRecords().Get("app-id")
	assert.False(t, ok)

	require.NoError(t, f.saveRecord(profile.User{Name: "bob@contoso.com", Type: profile.UserTypeUser}, azidentity.AuthenticationRecord{}))
	_, ok = f.profile.AuthRecords().Get("bob@contoso.com")
	assert.False(t, ok)

	require.NoError(t, f.saveRecord(profile.User{Name: "alice@contoso.com", Type: profile.UserTypeUser}, record))
	got, ok := f.profile.AuthRecords().Get("alice@contoso.com")
	require.True(t, ok)
	assert.Equal(t, record, got)
}

func TestNewCredentialRejectsServicePrincipalWithoutTenant(t *testing.T) {
	c, _ := FindCloud("")
	_, err := newCredential(c, LoginOptions{Type: profile.UserTypeServicePrincipal, Username: "app", Password: "x"})
	require.Error(t, err)

	_, err = newCredential(c, LoginOptions{Type: "robot"})
	require.Error(t, err)
}

func TestBlobOptionsWithEnvironment(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT", "envacct")
	t.Setenv("AZURE_STORAGE_KEY", "envkey")
	t.Setenv("AZURE_STORAGE_SAS_TOKEN", "")
	t.Setenv("AZURE_STORAGE_AUTH_MODE", "")

	o := BlobOptions{Container: "c", Name: "b"}.WithEnvironment()
	assert.Equal(t, "envacct", o.AccountName)
	assert.Equal(t, "envkey", o.AccountKey)
	assert.Equal(t, AuthModeKey, o.AuthMode)
	assert.False(t, o.NeedsKeyLookup())

	o = BlobOptions{AccountName: "flag", AuthMode: AuthModeLogin}.WithEnvironment()
	assert.Equal(t, "flag", o.AccountName)
	assert.False(t, o.NeedsKeyLookup())
}

func TestBlobURLEscaping(t *testing.T) {
	assert.Equal(t, "https://a.blob.core.windows.net/c/dir/my%20file.txt", blobURL("https://a.blob.core.windows.net/", "c", "dir/my file.txt"))
	assert.Equal(t, "https://x/c/b?sv=1&sig=2", appendSASToken("https://x/c/b", "?sv=1&sig=2"))
	assert.Equal(t, "https://x/c/b?a=1&sv=1", appendSASToken("https://x/c/b?a=1", "sv=1"))
}

// blobServer serves a single blob the way the storage service does for HEAD and ranged GET.
func blobServer(t *testing.T, data []byte, authorize func(r *http.Request) bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorize(r) {
			w.Header().Set("x-ms-error-code", "AuthenticationFailed")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path != "/data/dir/blob.bin" {
			w.Header().Set("x-ms-error-code", "BlobNotFound")
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("x-ms-blob-type", "BlockBlob")
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			var start, end int
			if _, err := fmt.Sscanf(r.Header.Get("x-ms-range"), "bytes=%d-%d", &start, &end); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			end = min(end, len(data)-1)
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
			w.Header().Set("Content-Length", strconv.Itoa(end-start+1))
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(data[start : end+1])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFactory(t *testing.T) *clientFactory {
	t.Helper()
	keyring.MockInit()
	p, err := profile.Load(t.TempDir())
	require.NoError(t, err)
	f, err := NewClientFactory(config.NewFromString(""), p)
	require.NoError(t, err)
	return f.(*clientFactory)
}

func downloadAll(t *testing.T, src download.RangeSource) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	_, err = download.Download(context.Background(), src, out, download.Options{ChunkSize: 100, End: -1})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func blobPayload() []byte {
	return []byte(strings.Repeat("0123456789", 25))
}

func TestBlobWithSASToken(t *testing.T) {
	data := blobPayload()
	srv := blobServer(t, data, func(r *http.Request) bool {
		return r.URL.Query().Get("sig") == "abc" && r.Header.Get("Authorization") == ""
	})
	f := newTestFactory(t)

	src, err := f.Blob(context.Background(), BlobOptions{
		AccountName: "acct",
		Container:   "data",
		Name:        "dir/blob.bin",
		SASToken:    "sv=2022-11-02&sig=abc",
		Endpoint:    srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/data/dir/blob.bin", src.URL())
	assert.Equal(t, data, downloadAll(t, src))
}

func TestBlobWithAccountKey(t *testing.T) {
	data := blobPayload()
	srv := blobServer(t, data, func(r *http.Request) bool {
		return strings.HasPrefix(r.Header.Get("Authorization"), "SharedKey acct:")
	})
	f := newTestFactory(t)

	src, err := f.Blob(context.Background(), BlobOptions{
		AccountName: "acct",
		Container:   "data",
		Name:        "dir/blob.bin",
		AccountKey:  base64.StdEncoding.EncodeToString([]byte("secret-key")),
		Endpoint:    srv.URL,
	})
	require.NoError(t, err)

	size, err := src.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.Equal(t, data, downloadAll(t, src))
}

func TestBlobRequiresAccount(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT", "")
	f := newTestFactory(t)
	_, err := f.Blob(context.Background(), BlobOptions{Container: "c", Name: "b"})
	require.ErrorIs(t, err, ErrNoStorageAccount)
}

func TestBlobLooksUpAccountKey(t *testing.T) {
	t.Setenv("AZURE_STORAGE_KEY", "")
	t.Setenv("AZURE_STORAGE_SAS_TOKEN", "")
	t.Setenv("AZURE_STORAGE_AUTH_MODE", "")
	data := blobPayload()
	key := base64.StdEncoding.EncodeToString([]byte("looked-up"))
	blobs := blobServer(t, data, func(r *http.Request) bool {
		return strings.HasPrefix(r.Header.Get("Authorization"), "SharedKey acct:")
	})

	accountID := "/subscriptions/sub1/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/acct"
	var listKeys atomic.Int32
	armSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cached" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/subscriptions/sub1/providers/Microsoft.Storage/storageAccounts":
			fmt.Fprintf(w, `{"value":[{"id":"/subscriptions/sub1/resourceGroups/rg/providers/Microsoft.Storage/storageAccounts/other","name":"other"},{"id":%q,"name":"ACCT"}]}`, accountID)
		case r.Method == http.MethodPost && r.URL.Path == accountID+"/listKeys":
			listKeys.Add(1)
			fmt.Fprintf(w, `{"keys":[{"keyName":"key1","value":%q,"permissions":"FULL"}]}`, key)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"NotFound","message":"nope"}}`)
		}
	}))
	defer armSrv.Close()
	t.Setenv("AZURE_ARM_ENDPOINT", armSrv.URL)

	f := newTestFactory(t)
	sp := profile.User{Name: "app-id", Type: profile.UserTypeServicePrincipal}
	require.NoError(t, f.profile.Replace(sp, []profile.Subscription{{ID: "sub1", Name: "Dev", State: profile.StateEnabled, TenantID: "t1"}}))
	require.NoError(t, f.profile.Secrets().Set("t1", "app-id", "s3cret", false))
	c, _ := FindCloud("")
	require.NoError(t, f.profile.Tokens().Put("t1", "app-id", c.ARMScope(), azcore.AccessToken{Token: "cached", ExpiresOn: time.Now().Add(time.Hour)}))

	opts := BlobOptions{AccountName: "acct", Container: "data", Name: "dir/blob.bin", Endpoint: blobs.URL}
	assert.True(t, opts.WithEnvironment().NeedsKeyLookup())
	src, err := f.Blob(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listKeys.Load())
	assert.Equal(t, data, downloadAll(t, src))

	_, err = f.Blob(context.Background(), BlobOptions{AccountName: "missing", Container: "data", Name: "x", Endpoint: blobs.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `storage account "missing" not found`)
}

func TestSubscriptionsKeepsStoredOnesOfFailedTenants(t *testing.T) {
	stubMSALCache(t)
	armSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/tenants":
			fmt.Fprint(w, `{"value":[{"tenantId":"t1"},{"tenantId":"t2"}]}`)
		case r.URL.Path == "/subscriptions" && r.Header.Get("Authorization") == "Bearer tok-t1":
			fmt.Fprint(w, `{"value":[{"subscriptionId":"s1","displayName":"One","state":"Enabled","tenantId":"t1"},{"subscriptionId":"s3","displayName":"Three","state":"Enabled","tenantId":"t1"}]}`)
		default:
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":"AuthorizationFailed","message":"multi factor authentication required"}}`)
		}
	}))
	defer armSrv.Close()
	t.Setenv("AZURE_ARM_ENDPOINT", armSrv.URL)

	f := newTestFactory(t)
	alice := profile.User{Name: "alice@contoso.com", Type: profile.UserTypeUser}
	require.NoError(t, f.profile.Replace(alice, []profile.Subscription{
		{ID: "s1", Name: "One", State: profile.StateEnabled, TenantID: "t1"},
		{ID: "s2", Name: "Two", State: profile.StateEnabled, TenantID: "t2"},
	}))
	c, _ := FindCloud("")
	for _, tenant := range []string{"t1", "t2"} {
		require.NoError(t, f.profile.Tokens().Put(tenant, alice.Name, c.ARMScope(), azcore.AccessToken{Token: "tok-" + tenant, ExpiresOn: time.Now().Add(time.Hour)}))
	}
	sub, err := f.profile.Find("s1")
	require.NoError(t, err)

	subs, err := f.Subscriptions(context.Background(), sub)
	require.NoError(t, err)
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"s1", "s3", "s2"}, ids)
}

func TestSubscriptionsFailsWhenTenantsCannotBeListed(t *testing.T) {
	stubMSALCache(t)
	armSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":"AuthorizationFailed","message":"denied"}}`)
	}))
	defer armSrv.Close()
	t.Setenv("AZURE_ARM_ENDPOINT", armSrv.URL)

	f := newTestFactory(t)
	alice := profile.User{Name: "alice@contoso.com", Type: profile.UserTypeUser}
	require.NoError(t, f.profile.Replace(alice, []profile.Subscription{{ID: "s1", Name: "One", State: profile.StateEnabled, TenantID: "t1"}}))
	c, _ := FindCloud("")
	require.NoError(t, f.profile.Tokens().Put("t1", alice.Name, c.ARMScope(), azcore.AccessToken{Token: "tok-t1", ExpiresOn: time.Now().Add(time.Hour)}))
	sub, err := f.profile.Find("s1")
	require.NoError(t, err)

	_, err = f.Subscriptions(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list the tenants of alice@contoso.com")
}
