package show

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/account/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type showOptions struct {
	subscription string
	exporter     util.Exporter
}

func NewCmdShow(ctx util.CmdContext) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Get the details of a subscription",
		Long: heredoc.Doc(`
			Get the details of a subscription. Without --subscription, the default subscription is
			shown.
		`),
		Example: heredoc.Doc(`
			$ az account show
			$ az account show -s Production --query id -o tsv
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.subscription, "subscription", "s", "", "Name or ID of subscription")
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func showRun(ctx util.CmdContext, opts *showOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	p, err := ctx.Profile()
	if err != nil {
		return err
	}

	sub, err := p.Default()
	if opts.subscription != "" {
		sub, err = p.Find(opts.subscription)
	}
	if err != nil {
		return util.TranslateError(err)
	}
	return opts.exporter.Write(iostreams, shared.FromProfile(sub))
}
