package show

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/cloud/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type showOptions struct {
	name     string
	exporter util.Exporter
}

func NewCmdShow(ctx util.CmdContext) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Get the details of a registered cloud",
		Example: heredoc.Doc(`
			$ az cloud show
			$ az cloud show -n AzureChinaCloud --query endpoints.resourceManager -o tsv
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Name of a registered cloud, defaults to the active cloud")
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func showRun(ctx util.CmdContext, opts *showOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}

	active := cfg.Defaults().Cloud()
	name := opts.name
	if name == "" {
		name = active
	}
	c, err := azure.FindCloud(name)
	if err != nil {
		return util.TranslateError(err)
	}
	c.IsActive = strings.EqualFold(c.Name, active)
	return opts.exporter.Write(iostreams, shared.FromCloud(c))
}
