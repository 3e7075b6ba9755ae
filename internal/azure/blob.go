package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/retry"
	"go.uber.org/zap"
)

const (
	AuthModeKey   = "key"
	AuthModeLogin = "login"

	envStorageAccount  = "AZURE_STORAGE_ACCOUNT"
	envStorageKey      = "AZURE_STORAGE_KEY"
	envStorageSASToken = "AZURE_STORAGE_SAS_TOKEN"
	envStorageAuthMode = "AZURE_STORAGE_AUTH_MODE"
)

var ErrNoStorageAccount = errors.New("a storage account name is required, use --account-name or set AZURE_STORAGE_ACCOUNT")

// BlobOptions identifies a blob and how to authenticate against its account.
type BlobOptions struct {
	AccountName string
	Container   string
	Name        string
	AuthMode    string
	AccountKey  string
	SASToken    string
	// Subscription is used to look the account key up when no credential is given.
	Subscription string
	// Endpoint overrides the blob service endpoint derived from the cloud.
	Endpoint string
}

// WithEnvironment fills unset fields from the AZURE_STORAGE_* environment variables.
func (o BlobOptions) WithEnvironment() BlobOptions {
	fill := func(v *string, env string) {
		if *v == "" {
			*v = os.Getenv(env)
		}
	}
	fill(&o.AccountName, envStorageAccount)
	fill(&o.AccountKey, envStorageKey)
	fill(&o.SASToken, envStorageSASToken)
	fill(&o.AuthMode, envStorageAuthMode)
	if o.AuthMode == "" {
		o.AuthMode = AuthModeKey
	}
	return o
}

// NeedsKeyLookup reports whether Blob will query the account key through Resource Manager.
func (o BlobOptions) NeedsKeyLookup() bool {
	return o.AuthMode != AuthModeLogin && o.AccountKey == "" && o.SASToken == ""
}

// transportAdapter lets the SDK pipeline send requests through an http.RoundTripper.
type transportAdapter struct {
	rt http.RoundTripper
}

func (t transportAdapter) Do(req *http.Request) (*http.Response, error) {
	return t.rt.RoundTrip(req)
}

func (f *clientFactory) blobClientOptions() *blob.ClientOptions {
	return &blob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: transportAdapter{rt: retry.NewTransport(nil, f.policy)},
			// retries happen in the transport
			Retry: policy.RetryOptions{MaxRetries: -1},
			Telemetry: policy.TelemetryOptions{
				ApplicationID: "az-cli",
			},
		},
	}
}

func blobURL(endpoint, container, name string) string {
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(container) + "/" + escapeBlobName(name)
}

func escapeBlobName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func appendSASToken(u, sas string) string {
	sas = strings.TrimPrefix(sas, "?")
	if strings.Contains(u, "?") {
		return u + "&" + sas
	}
	return u + "?" + sas
}

func (f *clientFactory) Blob(ctx context.Context, opts BlobOptions) (_ BlobSource, err error) {
	opts = opts.WithEnvironment()
	if opts.AccountName == "" {
		return nil, ErrNoStorageAccount
	}
	c, err := f.Cloud()
	if err != nil {
		return nil, err
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = c.BlobEndpoint(opts.AccountName)
	}
	u := blobURL(endpoint, opts.Container, opts.Name)
	clientOpts := f.blobClientOptions()

	var client *blob.Client
	switch {
	case opts.SASToken != "":
		client, err = blob.NewClientWithNoCredential(appendSASToken(u, opts.SASToken), clientOpts)
	case opts.AuthMode == AuthModeLogin:
		var cred azcore.TokenCredential
		cred, _, err = f.Credential(ctx, opts.Subscription)
		if err != nil {
			return nil, err
		}
		client, err = blob.NewClient(u, cred, clientOpts)
	default:
		key := opts.AccountKey
		if key == "" {
			key, err = f.accountKey(ctx, opts.Subscription, opts.AccountName)
			if err != nil {
				return nil, err
			}
		}
		var cred *blob.SharedKeyCredential
		cred, err = blob.NewSharedKeyCredential(opts.AccountName, key)
		if err != nil {
			return nil, fmt.Errorf("invalid account key: %w", err)
		}
		client, err = blob.NewClientWithSharedKeyCredential(u, cred, clientOpts)
	}
	if err != nil {
		return nil, err
	}
	return NewBlobSource(client), nil
}

// accountKey queries the first key of a storage account through Resource Manager.
func (f *clientFactory) accountKey(ctx context.Context, subscription, account string) (string, error) {
	client, err := f.ResourceManager(ctx, subscription)
	if err != nil {
		return "", err
	}
	p, err := arm.NewPager[arm.GenericResource](client, "/subscriptions/{subscriptionId}/providers/Microsoft.Storage/storageAccounts", arm.StorageAPIVersion, nil, pagingAll)
	if err != nil {
		return "", err
	}
	var id string
	for acc, err := range p.Items(ctx) {
		if err != nil {
			return "", err
		}
		if strings.EqualFold(acc.Name, account) {
			id = acc.ID
			break
		}
	}
	if id == "" {
		return "", fmt.Errorf("storage account %q not found in subscription %s", account, client.SubscriptionID())
	}
	zap.L().Sugar().Debugf("querying keys of %s", id)
	resp, err := client.Do(ctx, arm.Request{Method: http.MethodPost, Path: id + "/listKeys", APIVersion: arm.StorageAPIVersion})
	if err != nil {
		return "", err
	}
	var keys arm.StorageAccountKeys
	if err := resp.Decode(&keys); err != nil {
		return "", err
	}
	if len(keys.Keys) == 0 {
		return "", fmt.Errorf("storage account %q has no keys", account)
	}
	return keys.Keys[0].Value, nil
}

// BlobSource reads a blob by byte range.
type BlobSource interface {
	Size(ctx context.Context) (int64, error)
	ReadRange(ctx context.Context, offset, count int64) (io.ReadCloser, error)
	URL() string
}

type blobSource struct {
	client *blob.Client
}

func NewBlobSource(client *blob.Client) BlobSource {
	return &blobSource{client: client}
}

func (b *blobSource) URL() string {
	u, err := url.Parse(b.client.URL())
	if err != nil {
		return b.client.URL()
	}
	u.RawQuery = ""
	return u.String()
}

func (b *blobSource) Size(ctx context.Context) (int64, error) {
	props, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		return 0, err
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

func (b *blobSource) ReadRange(ctx context.Context, offset, count int64) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, &blob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: offset, Count: count},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
