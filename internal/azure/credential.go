package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity/cache"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

// CLIClientID is the public client application that interactive logins authenticate against.
const CLIClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"

// OrganizationsTenant lets a work or school account sign in without naming its tenant.
const OrganizationsTenant = "organizations"

// ErrLoginRequired is returned when a token can only be obtained interactively.
var ErrLoginRequired = errors.New("interactive login required")

// msalCache opens the persistent cache that keeps the refresh tokens of user accounts. Without it,
// user accounts have to log in again once their access token expires.
var msalCache = sync.OnceValues(func() (azidentity.Cache, error) {
	return cache.New(&cache.Options{Name: "az.msal"})
})

// CachingCredential serves tokens from the profile token cache before asking the wrapped
// credential.
type CachingCredential struct {
	cred      azcore.TokenCredential
	cache     *profile.TokenCache
	tenantID  string
	principal string
}

func NewCachingCredential(cred azcore.TokenCredential, cache *profile.TokenCache, tenantID, principal string) *CachingCredential {
	return &CachingCredential{cred: cred, cache: cache, tenantID: tenantID, principal: principal}
}

func (c *CachingCredential) tenant(opts policy.TokenRequestOptions) string {
	if opts.TenantID != "" {
		return opts.TenantID
	}
	return c.tenantID
}

func (c *CachingCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tenant := c.tenant(opts)
	scope := strings.Join(opts.Scopes, " ")
	if tok, ok := c.cache.Get(tenant, c.principal, scope); ok {
		return tok, nil
	}
	tok, err := c.cred.GetToken(ctx, opts)
	if err != nil {
		var authRequired *azidentity.AuthenticationRequiredError
		if errors.As(err, &authRequired) {
			return tok, fmt.Errorf("%w: the access token for %s has expired or was never acquired", ErrLoginRequired, c.principal)
		}
		return tok, err
	}
	if err := c.cache.Put(tenant, c.principal, scope, tok); err != nil {
		zap.L().Sugar().Debugf("failed to cache token: %v", err)
	}
	return tok, nil
}

// Invalidate removes the cached token matching opts.
func (c *CachingCredential) Invalidate(opts policy.TokenRequestOptions) {
	if err := c.cache.Invalidate(c.tenant(opts), c.principal, strings.Join(opts.Scopes, " ")); err != nil {
		zap.L().Sugar().Debugf("failed to invalidate token: %v", err)
	}
}

// LoginOptions selects how a new account authenticates.
type LoginOptions struct {
	Type string
	// Username is the client id of a service principal.
	Username string
	Password string
	TenantID string
	// IdentityClientID selects a user assigned managed identity.
	IdentityClientID string
	// Interactive enables device code authentication for user accounts.
	Interactive bool
	// Prompt receives the device code instructions.
	Prompt io.Writer
	// Record identifies a user account in the persistent token cache.
	Record azidentity.AuthenticationRecord
}

func clientOptions(c Cloud) azcore.ClientOptions {
	return azcore.ClientOptions{Cloud: c.Configuration()}
}

// newCredential builds the SDK credential for an account type.
func newCredential(c Cloud, opts LoginOptions) (azcore.TokenCredential, error) {
	switch opts.Type {
	case profile.UserTypeServicePrincipal:
		if opts.TenantID == "" {
			return nil, errors.New("a tenant is required for service principal logins")
		}
		return azidentity.NewClientSecretCredential(opts.TenantID, opts.Username, opts.Password, &azidentity.ClientSecretCredentialOptions{
			ClientOptions:              clientOptions(c),
			AdditionallyAllowedTenants: []string{"*"},
		})
	case profile.AssignedIdentitySystem, profile.AssignedIdentityUser:
		o := &azidentity.ManagedIdentityCredentialOptions{ClientOptions: clientOptions(c)}
		if opts.IdentityClientID != "" {
			o.ID = azidentity.ClientID(opts.IdentityClientID)
		}
		return azidentity.NewManagedIdentityCredential(o)
	case profile.UserTypeUser:
		return azidentity.NewDeviceCodeCredential(deviceCodeOptions(c, opts))
	default:
		return nil, fmt.Errorf("unsupported account type %q", opts.Type)
	}
}

func deviceCodeOptions(c Cloud, opts LoginOptions) *azidentity.DeviceCodeCredentialOptions {
	tenant := opts.TenantID
	if tenant == "" {
		tenant = OrganizationsTenant
	}
	prompt := opts.Prompt
	if prompt == nil {
		prompt = io.Discard
	}
	persistent, err := msalCache()
	if err != nil {
		zap.L().Sugar().Debugf("persistent token cache unavailable: %v", err)
	}
	return &azidentity.DeviceCodeCredentialOptions{
		ClientOptions:                  clientOptions(c),
		ClientID:                       CLIClientID,
		TenantID:                       tenant,
		AdditionallyAllowedTenants:     []string{"*"},
		AuthenticationRecord:           opts.Record,
		Cache:                          persistent,
		DisableAutomaticAuthentication: !opts.Interactive,
		UserPrompt: func(ctx context.Context, msg azidentity.DeviceCodeMessage) error {
			_, err := fmt.Fprintln(prompt, msg.Message)
			return err
		},
	}
}

// LoginOptionsFor derives the options to rebuild the credential of a stored account.
func LoginOptionsFor(sub profile.Subscription, secrets profile.SecretStore, records *profile.AuthRecordStore) (LoginOptions, error) {
	opts := LoginOptions{TenantID: sub.TenantID}
	switch {
	case sub.User.AssignedIdentityInfo != "" || sub.User.Name == profile.AssignedIdentitySystem || sub.User.Name == profile.AssignedIdentityUser:
		opts.Type = sub.User.Name
		if id, ok := strings.CutPrefix(sub.User.AssignedIdentityInfo, "MSIClient-"); ok {
			opts.IdentityClientID = id
		}
	case sub.User.Type == profile.UserTypeServicePrincipal:
		secret, err := secrets.Get(sub.TenantID, sub.User.Name)
		if err != nil {
			return opts, fmt.Errorf("failed to read the secret of %s: %w", sub.User.Name, err)
		}
		opts.Type = profile.UserTypeServicePrincipal
		opts.Username = sub.User.Name
		opts.Password = secret
	default:
		opts.Type = profile.UserTypeUser
		if r, ok := records.Get(sub.User.Name); ok {
			opts.Record = r
		}
	}
	return opts, nil
}

// CredentialFor returns the credential of a stored account, backed by the token cache.
func CredentialFor(c Cloud, sub profile.Subscription, p profile.Store) (*CachingCredential, error) {
	opts, err := LoginOptionsFor(sub, p.Secrets(), p.AuthRecords())
	if err != nil {
		return nil, err
	}
	cred, err := newCredential(c, opts)
	if err != nil {
		return nil, err
	}
	return NewCachingCredential(cred, p.Tokens(), sub.TenantID, sub.User.Name), nil
}
