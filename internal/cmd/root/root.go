package root

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/account"
	"github.com/tmeckel/az-cli/internal/cmd/auth/login"
	"github.com/tmeckel/az-cli/internal/cmd/auth/logout"
	"github.com/tmeckel/az-cli/internal/cmd/cloud"
	"github.com/tmeckel/az-cli/internal/cmd/config"
	"github.com/tmeckel/az-cli/internal/cmd/group"
	"github.com/tmeckel/az-cli/internal/cmd/resource"
	"github.com/tmeckel/az-cli/internal/cmd/rest"
	"github.com/tmeckel/az-cli/internal/cmd/storage"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	versionCmd "github.com/tmeckel/az-cli/internal/cmd/version"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

func NewCmdRoot(ctx util.CmdContext, version, buildDate string) (*cobra.Command, error) {
	cfg, err := ctx.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	iostrms, err := ctx.IOStreams()
	if err != nil {
		return nil, fmt.Errorf("failed to get IOStreams: %w", err)
	}

	cmd := &cobra.Command{
		Use:   "az <command> <subcommand> [flags]",
		Short: "Azure CLI",
		Long:  `Manage Azure resources from the command line.`,
		Example: heredoc.Doc(`
		$ az login
		$ az group list -o table
		$ az storage blob download --account-name mystorage -c data -n backup.tar -f backup.tar
	`),
		Annotations: map[string]string{
			"versionInfo": versionCmd.Format(version, buildDate),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if quiet, _ := cmd.Flags().GetBool("only-show-errors"); quiet {
				iostrms.SetQuiet(true)
			}
			// require that the user is logged in before running most commands
			if !util.IsAuthCheckEnabled(cmd) {
				return nil
			}
			p, err := ctx.Profile()
			if err != nil {
				return err
			}
			if !util.CheckAuth(p) {
				return util.TranslateError(profile.ErrNotLoggedIn)
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("help", false, "Show help for command")
	// logging flags are evaluated before the command tree is built; they are declared here so that
	// cobra accepts them
	cmd.PersistentFlags().Bool("debug", false, "Increase logging verbosity to show all debug logs")
	cmd.PersistentFlags().Bool("verbose", false, "Increase logging verbosity. Use --debug for full debug logs")
	cmd.PersistentFlags().Bool("only-show-errors", false, "Only show errors, suppressing warnings")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.Flags().Bool("version", false, "Show az version")

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		rootHelpFunc(iostrms, c, args)
	})
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return rootUsageFunc(iostrms.ErrOut, c)
	})

	cmd.SetFlagErrorFunc(rootFlagErrorFunc)

	cmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    "resources",
		Title: "Resource commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    "storage",
		Title: "Storage commands",
	})

	cmd.AddCommand(versionCmd.NewCmdVersion(ctx, version, buildDate))
	cmd.AddCommand(login.NewCmdLogin(ctx))
	cmd.AddCommand(logout.NewCmdLogout(ctx))
	cmd.AddCommand(account.NewCmdAccount(ctx))
	cmd.AddCommand(cloud.NewCmdCloud(ctx))
	cmd.AddCommand(config.NewCmdConfig(ctx))
	cmd.AddCommand(group.NewCmdGroup(ctx))
	cmd.AddCommand(resource.NewCmdResource(ctx))
	cmd.AddCommand(rest.NewCmdRest(ctx))
	cmd.AddCommand(storage.NewCmdStorage(ctx))

	// Help topics
	var referenceCmd *cobra.Command
	for _, ht := range HelpTopics {
		helpTopicCmd := NewCmdHelpTopic(iostrms, ht)
		cmd.AddCommand(helpTopicCmd)

		// See bottom of the function for why we explicitly care about the reference cmd
		if ht.name == "reference" {
			referenceCmd = helpTopicCmd
		}
	}

	// Aliases
	for aliasName, aliasValue := range cfg.Aliases().All() {
		if !validAliasName(cmd, aliasName) || !validAliasExpansion(cmd, aliasValue) {
			zap.L().Sugar().Warnf("ignoring invalid alias %q", aliasName)
			continue
		}
		split, _ := shlex.Split(aliasName)
		parentCmd, parentArgs, _ := cmd.Find(split)
		if len(parentArgs) == 0 {
			continue
		}
		if !parentCmd.ContainsGroup("alias") {
			parentCmd.AddGroup(&cobra.Group{
				ID:    "alias",
				Title: "Alias commands",
			})
		}
		if strings.HasPrefix(aliasValue, "!") {
			shellAliasCmd, err := NewCmdShellAlias(ctx, parentArgs[0], aliasValue)
			if err != nil {
				return nil, err
			}
			parentCmd.AddCommand(shellAliasCmd)
			continue
		}
		aliasCmd, err := NewCmdAlias(ctx, parentArgs[0], aliasValue)
		if err != nil {
			return nil, err
		}
		split, _ = shlex.Split(aliasValue)
		child, _, _ := cmd.Find(split)
		aliasCmd.SetUsageFunc(func(_ *cobra.Command) error {
			return rootUsageFunc(iostrms.ErrOut, child)
		})
		aliasCmd.SetHelpFunc(func(_ *cobra.Command, args []string) {
			rootHelpFunc(iostrms, child, args)
		})
		parentCmd.AddCommand(aliasCmd)
	}

	util.DisableAuthCheck(cmd)

	// The reference command produces paged output that displays information on every other command.
	// Therefore, we explicitly set the Long text and HelpFunc here after all other commands are registered.
	referenceCmd.Long = stringifyReference(cmd)
	referenceCmd.SetHelpFunc(longPager(iostrms))

	return cmd, nil
}
