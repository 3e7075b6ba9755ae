// Package azure builds authenticated clients for the Azure services used by the commands: the
// cloud registry, credentials for logged in accounts and the client factory.
package azure

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

const DefaultCloudName = "AzureCloud"

// Cloud describes the endpoints of an Azure cloud.
type Cloud struct {
	Name                      string `json:"name"`
	ResourceManager           string `json:"resourceManager"`
	ActiveDirectory           string `json:"activeDirectory"`
	ActiveDirectoryResourceID string `json:"activeDirectoryResourceId"`
	StorageEndpointSuffix     string `json:"storageEndpointSuffix"`
	IsActive                  bool   `json:"isActive"`
}

func newCloud(name string, cfg cloud.Configuration, storageSuffix string) Cloud {
	arm := cfg.Services[cloud.ResourceManager]
	return Cloud{
		Name:                      name,
		ResourceManager:           strings.TrimRight(arm.Endpoint, "/") + "/",
		ActiveDirectory:           strings.TrimRight(cfg.ActiveDirectoryAuthorityHost, "/"),
		ActiveDirectoryResourceID: strings.TrimRight(arm.Audience, "/") + "/",
		StorageEndpointSuffix:     storageSuffix,
	}
}

var knownClouds = []Cloud{
	newCloud("AzureCloud", cloud.AzurePublic, "core.windows.net"),
	newCloud("AzureChinaCloud", cloud.AzureChina, "core.chinacloudapi.cn"),
	newCloud("AzureUSGovernment", cloud.AzureGovernment, "core.usgovcloudapi.net"),
}

// Clouds returns the registered clouds, marking active as the active one.
func Clouds(active string) []Cloud {
	out := make([]Cloud, len(knownClouds))
	for i, c := range knownClouds {
		c.IsActive = strings.EqualFold(c.Name, active)
		out[i] = c
	}
	return out
}

type CloudNotFoundError struct {
	Name string
}

func (e *CloudNotFoundError) Error() string {
	return fmt.Sprintf("cloud %q is not registered", e.Name)
}

// FindCloud looks a cloud up by name, ignoring case. An empty name selects AzureCloud.
func FindCloud(name string) (Cloud, error) {
	if name == "" {
		name = DefaultCloudName
	}
	for _, c := range knownClouds {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Cloud{}, &CloudNotFoundError{Name: name}
}

// Configuration converts the cloud into the form the Azure SDK expects.
func (c Cloud) Configuration() cloud.Configuration {
	return cloud.Configuration{
		ActiveDirectoryAuthorityHost: c.ActiveDirectory + "/",
		Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
			cloud.ResourceManager: {
				Audience: c.ActiveDirectoryResourceID,
				Endpoint: c.ResourceManager,
			},
		},
	}
}

// ARMScope is the token scope for Azure Resource Manager. The resource id keeps its trailing slash,
// which yields the double slash the token service expects for this audience.
func (c Cloud) ARMScope() string {
	return ScopeForResource(c.ActiveDirectoryResourceID)
}

// StorageScope is the token scope for Azure Storage data plane access.
func (c Cloud) StorageScope() string {
	return "https://storage.azure.com/.default"
}

// BlobEndpoint returns the blob service endpoint of a storage account.
func (c Cloud) BlobEndpoint(account string) string {
	return fmt.Sprintf("https://%s.blob.%s/", account, c.StorageEndpointSuffix)
}

// ScopeForResource converts a v1 resource id into a v2 scope.
func ScopeForResource(resource string) string {
	if strings.HasSuffix(resource, "/.default") {
		return resource
	}
	return resource + "/.default"
}
