package get

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/config"
)

type getOptions struct {
	key      string
	exporter util.Exporter
}

func NewCmdConfigGet(ctx util.CmdContext) *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get [<key>]",
		Short: "Get a configuration",
		Long: heredoc.Doc(`
			Get a configuration value in the form section.key. Without a key, all configured values
			are returned grouped by section.
		`),
		Example: heredoc.Doc(`
			$ az config get core.output
			$ az config get core.output --query value -o tsv
			$ az config get
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.key = args[0]
			}
			return getRun(ctx, opts)
		},
	}

	util.AddOutputFlags(ctx, cmd, &opts.exporter,
		util.Column("Name", "name"),
		util.Column("Value", "value"),
		util.Column("Source", "source"),
	)

	return cmd
}

func getRun(ctx util.CmdContext, opts *getOptions) error {
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}

	entries := config.List(cfg)

	if opts.key == "" {
		sections := map[string][]config.Entry{}
		for _, e := range entries {
			section, _, _ := cutKey(e.Name)
			sections[section] = append(sections[section], e)
		}
		return opts.exporter.Write(iostreams, sections)
	}

	keys, err := config.ParseKey(opts.key)
	if err != nil {
		// a bare section name returns all values of the section
		section := []config.Entry{}
		for _, e := range entries {
			if s, _, _ := cutKey(e.Name); s == opts.key {
				section = append(section, e)
			}
		}
		if len(section) == 0 {
			return util.ResourceNotFoundErrorf("configuration section %q is not set", opts.key)
		}
		return opts.exporter.Write(iostreams, section)
	}

	name := strings.Join(keys, ".")
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return opts.exporter.Write(iostreams, e)
		}
	}
	return util.ResourceNotFoundErrorf("configuration %q is not set", opts.key)
}

func cutKey(name string) (section, key string, ok bool) {
	return strings.Cut(name, ".")
}
