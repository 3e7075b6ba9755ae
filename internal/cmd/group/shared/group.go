package shared

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

var TableColumns = []util.TableColumn{
	util.Column("Name", "name"),
	util.Column("Location", "location"),
	util.Column("Status", "properties.provisioningState"),
}

const collectionPath = "/subscriptions/{subscriptionId}/resourcegroups"

// CollectionPath is the ARM path listing the resource groups of the subscription.
func CollectionPath() string {
	return collectionPath
}

// Path is the ARM path of the resource group name.
func Path(name string) string {
	return collectionPath + "/" + url.PathEscape(name)
}

// ParseTag splits a tag given as key=value. A bare key yields an empty value.
func ParseTag(s string) (key, value string, err error) {
	key, value, _ = strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", util.ValidationErrorf("invalid tag %q, expected key[=value]", s)
	}
	return key, value, nil
}

// ParseTags converts tags given as key=value into a map. An empty string clears all tags.
func ParseTags(tags []string) (map[string]string, error) {
	out := map[string]string{}
	for _, t := range tags {
		if t == "" {
			continue
		}
		k, v, err := ParseTag(t)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// AddNameFlag adds --name/-n for the resource group a command acts on. --resource-group/-g is
// accepted as a hidden synonym.
func AddNameFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "name", "n", "", "Name of the resource group")
	cmd.Flags().StringVarP(p, "resource-group", "g", "", "Name of the resource group")
	_ = cmd.Flags().MarkHidden("resource-group")
}
