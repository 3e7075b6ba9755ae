package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/config/get"
	"github.com/tmeckel/az-cli/internal/cmd/config/list"
	"github.com/tmeckel/az-cli/internal/cmd/config/set"
	"github.com/tmeckel/az-cli/internal/cmd/config/unset"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/config"
)

func NewCmdConfig(ctx util.CmdContext) *cobra.Command {
	longDoc := strings.Builder{}
	longDoc.WriteString("Display or change configuration settings for az.\n\n")
	longDoc.WriteString("Keys use the form section.key. Every key can be overridden with the environment variable\n")
	longDoc.WriteString("AZURE_<SECTION>_<KEY>, e.g. AZURE_CORE_OUTPUT.\n\n")
	longDoc.WriteString("Current respected settings:\n")
	for _, co := range config.Options() {
		longDoc.WriteString(fmt.Sprintf("- %s: %s", co.Key, co.Description))
		if co.DefaultValue != "" {
			longDoc.WriteString(fmt.Sprintf(" (default: %q)", co.DefaultValue))
		}
		longDoc.WriteRune('\n')
	}

	cmd := &cobra.Command{
		Use:     "config <command>",
		Short:   "Manage configuration for az",
		Long:    longDoc.String(),
		GroupID: "core",
	}

	util.DisableAuthCheck(cmd)

	cmd.AddCommand(get.NewCmdConfigGet(ctx))
	cmd.AddCommand(set.NewCmdConfigSet(ctx))
	cmd.AddCommand(unset.NewCmdConfigUnset(ctx))
	cmd.AddCommand(list.NewCmdConfigList(ctx))

	return cmd
}
