package shared

import (
	"github.com/samber/lo"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type Endpoints struct {
	ActiveDirectory           string `json:"activeDirectory"`
	ActiveDirectoryResourceID string `json:"activeDirectoryResourceId"`
	ResourceManager           string `json:"resourceManager"`
}

type Suffixes struct {
	StorageEndpoint string `json:"storageEndpoint"`
}

// Cloud is a registered cloud as the cloud commands print it.
type Cloud struct {
	Endpoints Endpoints `json:"endpoints"`
	IsActive  bool      `json:"isActive"`
	Name      string    `json:"name"`
	Profile   string    `json:"profile"`
	Suffixes  Suffixes  `json:"suffixes"`
}

func FromCloud(c azure.Cloud) Cloud {
	return Cloud{
		Endpoints: Endpoints{
			ActiveDirectory:           c.ActiveDirectory,
			ActiveDirectoryResourceID: c.ActiveDirectoryResourceID,
			ResourceManager:           c.ResourceManager,
		},
		IsActive: c.IsActive,
		Name:     c.Name,
		Profile:  "latest",
		Suffixes: Suffixes{StorageEndpoint: c.StorageEndpointSuffix},
	}
}

func FromClouds(clouds []azure.Cloud) []Cloud {
	return lo.Map(clouds, func(c azure.Cloud, _ int) Cloud { return FromCloud(c) })
}

var TableColumns = []util.TableColumn{
	util.Column("IsActive", "isActive"),
	util.Column("Name", "name"),
	util.Column("Profile", "profile"),
}
