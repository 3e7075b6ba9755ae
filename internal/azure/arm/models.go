package arm

import "strings"

const (
	ResourcesAPIVersion     = "2022-09-01"
	SubscriptionsAPIVersion = "2022-12-01"
	StorageAPIVersion       = "2023-01-01"
)

type ResourceGroupProperties struct {
	ProvisioningState string `json:"provisioningState,omitempty"`
}

type ResourceGroup struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Type       string                   `json:"type"`
	Location   string                   `json:"location"`
	ManagedBy  *string                  `json:"managedBy"`
	Tags       map[string]string        `json:"tags"`
	Properties *ResourceGroupProperties `json:"properties,omitempty"`
}

type Sku struct {
	Name     string `json:"name,omitempty"`
	Tier     string `json:"tier,omitempty"`
	Capacity *int   `json:"capacity,omitempty"`
}

type GenericResource struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Location  string            `json:"location"`
	Kind      string            `json:"kind,omitempty"`
	ManagedBy string            `json:"managedBy,omitempty"`
	Sku       *Sku              `json:"sku,omitempty"`
	Tags      map[string]string `json:"tags"`
}

type ManagedByTenant struct {
	TenantID string `json:"tenantId"`
}

type Subscription struct {
	ID               string            `json:"id"`
	SubscriptionID   string            `json:"subscriptionId"`
	DisplayName      string            `json:"displayName"`
	State            string            `json:"state"`
	TenantID         string            `json:"tenantId"`
	HomeTenantID     string            `json:"homeTenantId,omitempty"`
	ManagedByTenants []ManagedByTenant `json:"managedByTenants"`
}

type Tenant struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenantId"`
	DisplayName   string `json:"displayName,omitempty"`
	DefaultDomain string `json:"defaultDomain,omitempty"`
}

type StorageAccountKey struct {
	KeyName     string `json:"keyName"`
	Value       string `json:"value"`
	Permissions string `json:"permissions"`
}

type StorageAccountKeys struct {
	Keys []StorageAccountKey `json:"keys"`
}

// ResourceGroupFromID returns the resource group segment of a resource id, or an empty string for
// ids outside of a resource group.
func ResourceGroupFromID(id string) string {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if strings.EqualFold(parts[i], "resourceGroups") {
			return parts[i+1]
		}
	}
	return ""
}
