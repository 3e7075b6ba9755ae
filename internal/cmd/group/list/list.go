package list

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/group/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/paging"
)

type listOptions struct {
	subscription string
	tag          string
	paging       paging.Options
	exporter     util.Exporter
}

func NewCmdList(ctx util.CmdContext) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List resource groups",
		Aliases: []string{"ls"},
		Example: heredoc.Doc(`
			$ az group list --tag env=prod -o table
			$ az group list --max-items 10
			$ az group list --max-items 10 --next-token <token>
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	cmd.Flags().StringVar(&opts.tag, "tag", "", "A single tag in 'key[=value]' format")
	util.AddPagingFlags(cmd, &opts.paging)
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func tagFilter(tag string) (string, error) {
	key, value, err := shared.ParseTag(tag)
	if err != nil {
		return "", err
	}
	quote := func(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }
	if value == "" && !strings.Contains(tag, "=") {
		return fmt.Sprintf("tagName eq %s", quote(key)), nil
	}
	return fmt.Sprintf("tagName eq %s and tagValue eq %s", quote(key), quote(value)), nil
}

func listRun(ctx util.CmdContext, opts *listOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}

	query := url.Values{}
	if opts.tag != "" {
		filter, err := tagFilter(opts.tag)
		if err != nil {
			return err
		}
		query.Set("$filter", filter)
	}

	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	client, err := factory.ResourceManager(ctx.Context(), opts.subscription)
	if err != nil {
		return util.TranslateError(err)
	}

	pager, err := arm.NewPager[arm.ResourceGroup](client, shared.CollectionPath(), arm.ResourcesAPIVersion, query, opts.paging)
	if err != nil {
		return util.PagingError(err)
	}
	groups, err := util.CollectPages(ctx.Context(), iostreams, pager)
	if err != nil {
		return err
	}
	return opts.exporter.Write(iostreams, groups)
}
