package list

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/cloud/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type listOptions struct {
	exporter util.Exporter
}

func NewCmdList(ctx util.CmdContext) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered clouds",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(ctx, opts)
		},
	}

	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func listRun(ctx util.CmdContext, opts *listOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	return opts.exporter.Write(iostreams, shared.FromClouds(azure.Clouds(cfg.Defaults().Cloud())))
}
