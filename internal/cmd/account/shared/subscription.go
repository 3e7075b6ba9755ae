// Package shared holds the output shapes of the account related commands.
package shared

import (
	"github.com/samber/lo"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/profile"
)

type User struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	AssignedIdentityInfo string `json:"assignedIdentityInfo,omitempty"`
}

// Subscription is a subscription of the profile as the account commands print it.
type Subscription struct {
	CloudName        string                    `json:"cloudName"`
	HomeTenantID     string                    `json:"homeTenantId,omitempty"`
	ID               string                    `json:"id"`
	IsDefault        bool                      `json:"isDefault"`
	ManagedByTenants []profile.ManagedByTenant `json:"managedByTenants"`
	Name             string                    `json:"name"`
	State            string                    `json:"state"`
	TenantID         string                    `json:"tenantId"`
	User             User                      `json:"user"`
}

func FromProfile(s profile.Subscription) Subscription {
	managedBy := s.ManagedByTenants
	if managedBy == nil {
		managedBy = []profile.ManagedByTenant{}
	}
	return Subscription{
		CloudName:        s.EnvironmentName,
		HomeTenantID:     s.HomeTenantID,
		ID:               s.ID,
		IsDefault:        s.IsDefault,
		ManagedByTenants: managedBy,
		Name:             s.Name,
		State:            s.State,
		TenantID:         s.TenantID,
		User: User{
			Name:                 s.User.Name,
			Type:                 s.User.Type,
			AssignedIdentityInfo: s.User.AssignedIdentityInfo,
		},
	}
}

func FromProfileList(subs []profile.Subscription) []Subscription {
	return lo.Map(subs, func(s profile.Subscription, _ int) Subscription { return FromProfile(s) })
}

// TableColumns is the table layout of subscription lists.
var TableColumns = []util.TableColumn{
	util.Column("Name", "name"),
	util.Column("CloudName", "cloudName"),
	util.Column("SubscriptionId", "id"),
	util.Column("TenantId", "tenantId"),
	util.Column("State", "state"),
	util.Column("IsDefault", "isDefault"),
}
