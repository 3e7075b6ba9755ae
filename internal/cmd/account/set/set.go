package set

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"go.uber.org/zap"
)

type setOptions struct {
	subscription string
}

func NewCmdSet(ctx util.CmdContext) *cobra.Command {
	opts := &setOptions{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a subscription to be the current active subscription",
		Example: heredoc.Doc(`
			$ az account set -s Production
			$ az account set --subscription 00000000-0000-0000-0000-000000000000
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRun(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.subscription, "subscription", "s", "", "Name or ID of subscription")
	_ = cmd.MarkFlagRequired("subscription")

	return cmd
}

func setRun(ctx util.CmdContext, opts *setOptions) error {
	p, err := ctx.Profile()
	if err != nil {
		return err
	}
	sub, err := p.SetDefault(opts.subscription)
	if err != nil {
		return util.TranslateError(err)
	}
	zap.L().Sugar().Debugf("default subscription is now %s (%s)", sub.Name, sub.ID)
	return p.Save()
}
