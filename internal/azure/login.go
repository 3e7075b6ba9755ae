package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/tmeckel/az-cli/internal/paging"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

var pagingAll = paging.Options{}

func warnf(format string, args ...any) {
	zap.L().Sugar().Warnf(format, args...)
}

func (f *clientFactory) Login(ctx context.Context, opts LoginOptions, allowNoSubscriptions bool) (profile.User, []profile.Subscription, error) {
	c, err := f.Cloud()
	if err != nil {
		return profile.User{}, nil, err
	}
	cred, err := newCredential(c, opts)
	if err != nil {
		return profile.User{}, nil, err
	}
	user, record, err := authenticate(ctx, c, cred, opts)
	if err != nil {
		return user, nil, err
	}
	if opts.Type == profile.UserTypeUser {
		if _, err := msalCache(); err != nil {
			warnf("tokens of %s cannot be refreshed, log in again once the access token expires: %v", user.Name, err)
		}
	}

	homeTenant := opts.TenantID
	if homeTenant == "" && opts.Type == profile.UserTypeUser {
		homeTenant = OrganizationsTenant
	}
	caching := NewCachingCredential(cred, f.profile.Tokens(), homeTenant, user.Name)

	tenants := []string{opts.TenantID}
	if opts.TenantID == "" {
		found, err := f.tenants(ctx, c, caching, homeTenant)
		if err != nil {
			return user, nil, fmt.Errorf("failed to list tenants: %w", err)
		}
		tenants = found
	}

	subs, errs := f.subscriptionsIn(ctx, c, caching, tenants)
	if len(subs) == 0 {
		if allowNoSubscriptions {
			for _, t := range tenants {
				subs = append(subs, tenantLevelAccount(c, t))
			}
			if err := f.saveRecord(user, record); err != nil {
				return user, nil, err
			}
			return user, subs, nil
		}
		if len(errs) > 0 {
			return user, nil, errors.Join(append([]error{errNoSubscriptions}, errs...)...)
		}
		return user, nil, fmt.Errorf("%w for %s, use --allow-no-subscriptions to access tenant level accounts", errNoSubscriptions, user.Name)
	}
	if err := f.saveRecord(user, record); err != nil {
		return user, nil, err
	}
	return user, subs, nil
}

// saveRecord keeps the authentication record of a user account for later silent token requests.
func (f *clientFactory) saveRecord(user profile.User, record azidentity.AuthenticationRecord) error {
	if user.Type != profile.UserTypeUser || record == (azidentity.AuthenticationRecord{}) {
		return nil
	}
	return f.profile.AuthRecords().Put(user.Name, record)
}

// authenticate acquires a first token and determines the user the account is stored under. User
// accounts also yield the record that identifies them in the persistent token cache.
func authenticate(ctx context.Context, c Cloud, cred azcore.TokenCredential, opts LoginOptions) (profile.User, azidentity.AuthenticationRecord, error) {
	var none azidentity.AuthenticationRecord
	scope := policy.TokenRequestOptions{Scopes: []string{c.ARMScope()}}
	switch opts.Type {
	case profile.UserTypeServicePrincipal:
		if _, err := cred.GetToken(ctx, scope); err != nil {
			return profile.User{}, none, err
		}
		return profile.User{Name: opts.Username, Type: profile.UserTypeServicePrincipal}, none, nil
	case profile.AssignedIdentitySystem, profile.AssignedIdentityUser:
		if _, err := cred.GetToken(ctx, scope); err != nil {
			return profile.User{}, none, err
		}
		info := "MSI"
		if opts.IdentityClientID != "" {
			info = "MSIClient-" + opts.IdentityClientID
		}
		return profile.User{Name: opts.Type, Type: profile.UserTypeServicePrincipal, AssignedIdentityInfo: info}, none, nil
	default:
		dc, ok := cred.(*azidentity.DeviceCodeCredential)
		if !ok {
			return profile.User{}, none, fmt.Errorf("unsupported credential %T for user login", cred)
		}
		record, err := dc.Authenticate(ctx, &scope)
		if err != nil {
			return profile.User{}, none, err
		}
		name := record.Username
		if name == "" {
			tok, err := dc.GetToken(ctx, scope)
			if err != nil {
				return profile.User{}, none, err
			}
			claims, err := profile.ParseClaims(tok.Token)
			if err != nil {
				return profile.User{}, none, err
			}
			name = claims.UserName
		}
		return profile.User{Name: name, Type: profile.UserTypeUser}, record, nil
	}
}
