package config

import (
	"slices"
	"strconv"
	"strings"
)

// ConfigOption describes a well known configuration key.
type ConfigOption struct {
	Key           string
	Description   string
	DefaultValue  string
	AllowedValues []string
	// Validate checks free form values. Nil means any value is accepted.
	Validate func(string) error
}

const (
	KeyOutput          = "core.output"
	KeyOnlyShowErrors  = "core.only_show_errors"
	KeyNoColor         = "core.no_color"
	KeyPrompt          = "core.prompt"
	KeyPager           = "core.pager"
	KeyDefaultGroup    = "defaults.group"
	KeyDefaultLocation = "defaults.location"
	KeyMaxConnections  = "storage.max_connections"
	KeyCloud           = "cloud.name"
)

var boolValues = []string{"true", "false"}

var configOptions = []ConfigOption{
	{
		Key:           KeyOutput,
		Description:   "the default output format",
		DefaultValue:  "json",
		AllowedValues: []string{"json", "jsonc", "yaml", "yamlc", "table", "tsv", "none"},
	},
	{
		Key:           KeyOnlyShowErrors,
		Description:   "suppress warnings and only print errors",
		DefaultValue:  "false",
		AllowedValues: boolValues,
	},
	{
		Key:           KeyNoColor,
		Description:   "disable colored output",
		DefaultValue:  "false",
		AllowedValues: boolValues,
	},
	{
		Key:           KeyPrompt,
		Description:   "toggle interactive prompting in the terminal",
		DefaultValue:  "enabled",
		AllowedValues: []string{"enabled", "disabled"},
	},
	{
		Key:          KeyPager,
		Description:  "the terminal pager program to send standard output to",
		DefaultValue: "",
	},
	{
		Key:          KeyDefaultGroup,
		Description:  "the resource group used when --resource-group is omitted",
		DefaultValue: "",
	},
	{
		Key:          KeyDefaultLocation,
		Description:  "the location used when --location is omitted",
		DefaultValue: "",
	},
	{
		Key:          KeyMaxConnections,
		Description:  "the number of parallel connections used for blob transfers",
		DefaultValue: "2",
		Validate: func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return &InvalidValueError{Key: KeyMaxConnections, Value: v, AllowedValues: []string{"a positive integer"}}
			}
			return nil
		},
	},
	{
		Key:           KeyCloud,
		Description:   "the active cloud",
		DefaultValue:  "AzureCloud",
		AllowedValues: []string{"AzureCloud", "AzureChinaCloud", "AzureUSGovernment"},
	},
}

// Options returns the well known configuration keys.
func Options() []ConfigOption {
	return configOptions
}

func findOption(key string) (ConfigOption, bool) {
	for _, o := range configOptions {
		if strings.EqualFold(o.Key, key) {
			return o, true
		}
	}
	return ConfigOption{}, false
}

// IsKnownKey reports whether key is a well known option.
func IsKnownKey(key string) bool {
	_, ok := findOption(key)
	return ok
}

// Validate checks value against the allowed values of a well known key. Unknown keys are accepted.
func Validate(key, value string) error {
	o, ok := findOption(key)
	if !ok {
		return nil
	}
	if len(o.AllowedValues) > 0 && !slices.Contains(o.AllowedValues, value) {
		return &InvalidValueError{Key: o.Key, Value: value, AllowedValues: o.AllowedValues}
	}
	if o.Validate != nil {
		return o.Validate(value)
	}
	return nil
}

func defaultFor(key string) string {
	if o, ok := findOption(key); ok {
		return o.DefaultValue
	}
	return ""
}

// ParseKey splits a section.key name into its path.
func ParseKey(key string) ([]string, error) {
	section, name, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok || section == "" || name == "" || strings.Contains(name, ".") {
		return nil, &InvalidKeyError{Key: key}
	}
	return []string{section, name}, nil
}
