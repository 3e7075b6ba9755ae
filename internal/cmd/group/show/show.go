package show

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/group/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type showOptions struct {
	subscription string
	name         string
	exporter     util.Exporter
}

func NewCmdShow(ctx util.CmdContext) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Get a resource group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	shared.AddNameFlag(cmd, &opts.name)
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func showRun(ctx util.CmdContext, opts *showOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	name, err := util.ResolveResourceGroup(ctx, opts.name)
	if err != nil {
		return err
	}
	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	client, err := factory.ResourceManager(ctx.Context(), opts.subscription)
	if err != nil {
		return util.TranslateError(err)
	}

	group, err := arm.Get[arm.ResourceGroup](ctx.Context(), client, shared.Path(name), arm.ResourcesAPIVersion)
	if err != nil {
		return util.TranslateError(err)
	}
	return opts.exporter.Write(iostreams, group)
}
