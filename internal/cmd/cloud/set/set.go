package set

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

type setOptions struct {
	name string
}

func NewCmdSet(ctx util.CmdContext) *cobra.Command {
	opts := &setOptions{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the active cloud",
		Long: heredoc.Doc(`
			Set the active cloud. Accounts are bound to the cloud they logged in to, run
			'az login' after switching to a cloud without accounts.
		`),
		Example: heredoc.Doc(`
			$ az cloud set -n AzureUSGovernment
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRun(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Name of a registered cloud")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func setRun(ctx util.CmdContext, opts *setOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	p, err := ctx.Profile()
	if err != nil {
		return err
	}

	c, err := azure.FindCloud(opts.name)
	if err != nil {
		return util.TranslateError(err)
	}
	if strings.EqualFold(cfg.Defaults().Cloud(), c.Name) {
		zap.L().Sugar().Debugf("cloud %s is already active", c.Name)
		return nil
	}
	if err := cfg.Defaults().SetCloud(c.Name); err != nil {
		return util.TranslateError(err)
	}

	if !lo.SomeBy(p.Subscriptions(), func(s profile.Subscription) bool {
		return strings.EqualFold(s.EnvironmentName, c.Name)
	}) {
		iostreams.Warnf("switched active cloud to '%s', use 'az login' to log in to this cloud", c.Name)
	}
	return nil
}
