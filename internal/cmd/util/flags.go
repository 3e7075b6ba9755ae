package util

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tmeckel/az-cli/internal/text"
)

// StringEnumFlag defines a new string flag that only allows values listed in options.
func StringEnumFlag(cmd *cobra.Command, p *string, name, shorthand, defaultValue string, options []string, usage string) *pflag.Flag {
	*p = defaultValue
	val := &enumValue{string: p, options: options}
	f := cmd.Flags().VarPF(val, name, shorthand, fmt.Sprintf("%s: %s", usage, formatValuesForUsageDocs(options)))
	_ = cmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return options, cobra.ShellCompDirectiveNoFileComp
	})
	return f
}

func formatValuesForUsageDocs(values []string) string {
	return fmt.Sprintf("{%s}", strings.Join(values, "|"))
}

type enumValue struct {
	string  *string
	options []string
}

func (e *enumValue) Set(value string) error {
	for _, opt := range e.options {
		if strings.EqualFold(opt, value) {
			*e.string = opt
			return nil
		}
	}
	return fmt.Errorf("invalid choice: '%s' (choose from %s)", value, text.NewSliceFormatter(e.options).WithPrepend("'").WithAppend("'"))
}

func (e *enumValue) String() string {
	return *e.string
}

func (e *enumValue) Type() string {
	return "string"
}

// AddSubscriptionFlag adds the --subscription flag that selects the subscription a command acts on.
func AddSubscriptionFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVar(p, "subscription", "", "Name or ID of subscription. You can configure the default subscription using `az account set -s NAME_OR_ID`")
}

// AddResourceGroupFlag adds --resource-group/-g. An empty value is filled from defaults.group by
// ResolveResourceGroup.
func AddResourceGroupFlag(cmd *cobra.Command, p *string, usage string) {
	if usage == "" {
		usage = "Name of resource group. You can configure the default group using `az config set defaults.group=<name>`"
	}
	cmd.Flags().StringVarP(p, "resource-group", "g", "", usage)
}

// ResolveResourceGroup returns name, or the configured default group when name is empty. A
// ValidationError is returned when neither is set.
func ResolveResourceGroup(ctx CmdContext, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	cfg, err := ctx.Config()
	if err != nil {
		return "", err
	}
	if g := cfg.Defaults().Group(); g != "" {
		return g, nil
	}
	return "", ValidationErrorf("the following arguments are required: --resource-group/-g")
}
