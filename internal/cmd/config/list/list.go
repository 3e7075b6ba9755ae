package list

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/config"
)

type listOptions struct {
	all      bool
	exporter util.Exporter
}

type listEntry struct {
	config.Entry
	Description string `json:"description,omitempty"`
}

func NewCmdConfigList(ctx util.CmdContext) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Print a list of configuration keys and values",
		Aliases: []string{"ls"},
		Args:    cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Show config options which are not configured")
	util.AddOutputFlags(ctx, cmd, &opts.exporter,
		util.Column("Name", "name"),
		util.Column("Value", "value"),
		util.Column("Source", "source"),
	)
	return cmd
}

func listRun(ctx util.CmdContext, opts *listOptions) error {
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	iostrms, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}

	descriptions := lo.SliceToMap(config.Options(), func(o config.ConfigOption) (string, string) {
		return o.Key, o.Description
	})

	entries := lo.Map(config.List(cfg), func(e config.Entry, _ int) listEntry {
		return listEntry{Entry: e, Description: descriptions[e.Name]}
	})

	if opts.all {
		for _, o := range config.Options() {
			if slices.ContainsFunc(entries, func(e listEntry) bool { return e.Name == o.Key }) {
				continue
			}
			entries = append(entries, listEntry{
				Entry:       config.Entry{Name: o.Key, Value: o.DefaultValue, Source: "default"},
				Description: o.Description,
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b listEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return opts.exporter.Write(iostrms, entries)
}
