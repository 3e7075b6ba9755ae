package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/build"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/profile"
	"github.com/tmeckel/az-cli/internal/retry"
)

//go:generate mockgen -destination=../mocks/client_factory_mock.go -package=mocks github.com/tmeckel/az-cli/internal/azure ClientFactory,BlobSource

// ClientFactory creates authenticated clients for the active cloud and the accounts of the
// profile.
type ClientFactory interface {
	Cloud() (Cloud, error)
	// Login authenticates a new account and discovers the subscriptions it can access.
	Login(ctx context.Context, opts LoginOptions, allowNoSubscriptions bool) (profile.User, []profile.Subscription, error)
	// Subscription resolves a subscription name or id, or the default subscription when empty.
	Subscription(subscription string) (profile.Subscription, error)
	Credential(ctx context.Context, subscription string) (azcore.TokenCredential, profile.Subscription, error)
	ResourceManager(ctx context.Context, subscription string) (arm.Client, error)
	// REST returns a client like ResourceManager whose tokens are issued for scope. An empty scope
	// selects Azure Resource Manager.
	REST(ctx context.Context, subscription, scope string) (arm.Client, error)
	// Subscriptions lists the subscriptions the account of sub can access today.
	Subscriptions(ctx context.Context, sub profile.Subscription) ([]profile.Subscription, error)
	Blob(ctx context.Context, opts BlobOptions) (BlobSource, error)
}

type clientFactory struct {
	cfg        config.Config
	profile    profile.Store
	httpClient *http.Client
	policy     retry.Policy
}

func NewClientFactory(cfg config.Config, p profile.Store) (ClientFactory, error) {
	return &clientFactory{
		cfg:        cfg,
		profile:    p,
		httpClient: &http.Client{},
		policy:     retry.NewExponentialPolicy(),
	}, nil
}

func userAgent() string {
	return fmt.Sprintf("az-cli/%s", build.Version)
}

func (f *clientFactory) Cloud() (Cloud, error) {
	return FindCloud(f.cfg.Defaults().Cloud())
}

func (f *clientFactory) newARM(c Cloud, cred azcore.TokenCredential, scope, tenantID, subscriptionID string) arm.Client {
	endpoint := c.ResourceManager
	if v := os.Getenv("AZURE_ARM_ENDPOINT"); v != "" {
		endpoint = v
	}
	return arm.NewClient(cred, arm.Options{
		Endpoint:       endpoint,
		Scope:          scope,
		TenantID:       tenantID,
		SubscriptionID: subscriptionID,
		HTTPClient:     f.httpClient,
		Policy:         f.policy,
		UserAgent:      userAgent(),
	})
}

func (f *clientFactory) Subscription(subscription string) (profile.Subscription, error) {
	if strings.TrimSpace(subscription) == "" {
		return f.profile.Default()
	}
	return f.profile.Find(subscription)
}

func (f *clientFactory) Credential(ctx context.Context, subscription string) (azcore.TokenCredential, profile.Subscription, error) {
	sub, err := f.Subscription(subscription)
	if err != nil {
		return nil, sub, err
	}
	c, err := f.Cloud()
	if err != nil {
		return nil, sub, err
	}
	cred, err := CredentialFor(c, sub, f.profile)
	if err != nil {
		return nil, sub, err
	}
	return cred, sub, nil
}

func (f *clientFactory) ResourceManager(ctx context.Context, subscription string) (arm.Client, error) {
	return f.REST(ctx, subscription, "")
}

func (f *clientFactory) REST(ctx context.Context, subscription, scope string) (arm.Client, error) {
	cred, sub, err := f.Credential(ctx, subscription)
	if err != nil {
		return nil, err
	}
	c, err := f.Cloud()
	if err != nil {
		return nil, err
	}
	subID := sub.ID
	if sub.IsTenantLevel() {
		subID = ""
	}
	if scope == "" {
		scope = c.ARMScope()
	}
	return f.newARM(c, cred, scope, sub.TenantID, subID), nil
}

func (f *clientFactory) Subscriptions(ctx context.Context, sub profile.Subscription) ([]profile.Subscription, error) {
	c, err := f.Cloud()
	if err != nil {
		return nil, err
	}
	cred, err := CredentialFor(c, sub, f.profile)
	if err != nil {
		return nil, err
	}
	tenants := []string{sub.TenantID}
	if sub.User.Type == profile.UserTypeUser {
		found, err := f.tenants(ctx, c, cred, sub.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to list the tenants of %s: %w", sub.User.Name, err)
		}
		if len(found) > 0 {
			tenants = found
		}
	}
	subs, errs := f.subscriptionsIn(ctx, c, cred, tenants)
	for _, err := range errs {
		var tErr *tenantError
		if !errors.As(err, &tErr) {
			return nil, err
		}
		stored := f.storedIn(sub.User, tErr.TenantID)
		if len(stored) > 0 {
			warnf("keeping %d stored subscriptions of tenant %s", len(stored), tErr.TenantID)
		}
		subs = append(subs, stored...)
	}
	return subs, nil
}

// storedIn returns the subscriptions of user in tenant as kept in the profile.
func (f *clientFactory) storedIn(user profile.User, tenant string) []profile.Subscription {
	var out []profile.Subscription
	for _, s := range f.profile.Subscriptions() {
		if strings.EqualFold(s.User.Name, user.Name) && s.User.Type == user.Type && strings.EqualFold(s.TenantID, tenant) {
			out = append(out, s)
		}
	}
	return out
}

func (f *clientFactory) tenants(ctx context.Context, c Cloud, cred azcore.TokenCredential, tenantID string) ([]string, error) {
	p, err := arm.NewPager[arm.Tenant](f.newARM(c, cred, c.ARMScope(), tenantID, ""), "/tenants", arm.SubscriptionsAPIVersion, nil, pagingAll)
	if err != nil {
		return nil, err
	}
	found, err := p.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(found))
	for _, t := range found {
		ids = append(ids, t.TenantID)
	}
	return ids, nil
}

// subscriptionsIn lists the subscriptions of every tenant. A tenant that fails, e.g. because it
// requires multi factor authentication, is skipped with a warning.
func (f *clientFactory) subscriptionsIn(ctx context.Context, c Cloud, cred azcore.TokenCredential, tenants []string) ([]profile.Subscription, []error) {
	var (
		subs []profile.Subscription
		errs []error
	)
	for _, tenant := range tenants {
		p, err := arm.NewPager[arm.Subscription](f.newARM(c, cred, c.ARMScope(), tenant, ""), "/subscriptions", arm.SubscriptionsAPIVersion, nil, pagingAll)
		if err != nil {
			return nil, []error{err}
		}
		found, err := p.All(ctx)
		if err != nil {
			warnf("failed to list subscriptions of tenant %s: %v", tenant, err)
			errs = append(errs, &tenantError{TenantID: tenant, Err: err})
			continue
		}
		for _, s := range found {
			subs = append(subs, toProfileSubscription(c, s, tenant))
		}
	}
	return subs, errs
}

func toProfileSubscription(c Cloud, s arm.Subscription, tenant string) profile.Subscription {
	tenantID := s.TenantID
	if tenantID == "" {
		tenantID = tenant
	}
	managedBy := make([]profile.ManagedByTenant, 0, len(s.ManagedByTenants))
	for _, m := range s.ManagedByTenants {
		managedBy = append(managedBy, profile.ManagedByTenant{TenantID: m.TenantID})
	}
	return profile.Subscription{
		ID:               s.SubscriptionID,
		Name:             s.DisplayName,
		State:            s.State,
		TenantID:         tenantID,
		HomeTenantID:     s.HomeTenantID,
		EnvironmentName:  c.Name,
		ManagedByTenants: managedBy,
	}
}

func tenantLevelAccount(c Cloud, tenant string) profile.Subscription {
	return profile.Subscription{
		ID:               tenant,
		Name:             profile.TenantLevelAccountName,
		State:            profile.StateEnabled,
		TenantID:         tenant,
		EnvironmentName:  c.Name,
		ManagedByTenants: []profile.ManagedByTenant{},
	}
}

var errNoSubscriptions = errors.New("no subscriptions found")

// tenantError records the tenant whose subscriptions could not be listed.
type tenantError struct {
	TenantID string
	Err      error
}

func (e *tenantError) Error() string {
	return fmt.Sprintf("tenant %s: %v", e.TenantID, e.Err)
}

func (e *tenantError) Unwrap() error {
	return e.Err
}
