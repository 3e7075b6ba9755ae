package list

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/paging"
)

type listOptions struct {
	subscription  string
	resourceGroup string
	resourceType  string
	name          string
	location      string
	tag           string
	paging        paging.Options
	exporter      util.Exporter
}

// resource adds the resource group that the list API leaves out.
type resource struct {
	arm.GenericResource
	ResourceGroup string `json:"resourceGroup"`
}

func NewCmdList(ctx util.CmdContext) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Long: heredoc.Doc(`
			List the resources of a subscription or of a resource group. The filters are
			evaluated by Azure Resource Manager. --tag cannot be combined with other filters.
		`),
		Example: heredoc.Doc(`
			$ az resource list -g my-rg -o table
			$ az resource list --resource-type Microsoft.Storage/storageAccounts --query [].name -o tsv
			$ az resource list --tag env=prod
		`),
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	util.AddResourceGroupFlag(cmd, &opts.resourceGroup, "")
	cmd.Flags().StringVar(&opts.resourceType, "resource-type", "", "The resource type, e.g. Microsoft.Web/sites")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "The resource name")
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "Location of the resources")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "A single tag in 'key[=value]' format")
	util.AddPagingFlags(cmd, &opts.paging)
	util.AddOutputFlags(ctx, cmd, &opts.exporter,
		util.Column("Name", "name"),
		util.Column("ResourceGroup", "resourceGroup"),
		util.Column("Location", "location"),
		util.Column("Type", "type"),
	)

	return cmd
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (opts *listOptions) filter() (string, error) {
	if opts.tag != "" {
		if opts.resourceType != "" || opts.name != "" || opts.location != "" {
			return "", util.ValidationErrorf("--tag cannot be used with --resource-type, --name or --location")
		}
		key, value, found := strings.Cut(opts.tag, "=")
		if key == "" {
			return "", util.ValidationErrorf("invalid tag %q, expected key[=value]", opts.tag)
		}
		if !found {
			return fmt.Sprintf("tagName eq %s", quote(key)), nil
		}
		return fmt.Sprintf("tagName eq %s and tagValue eq %s", quote(key), quote(value)), nil
	}

	var terms []string
	if opts.resourceType != "" {
		terms = append(terms, "resourceType eq "+quote(opts.resourceType))
	}
	if opts.name != "" {
		terms = append(terms, "name eq "+quote(opts.name))
	}
	if opts.location != "" {
		terms = append(terms, "location eq "+quote(opts.location))
	}
	return strings.Join(terms, " and "), nil
}

func listRun(ctx util.CmdContext, opts *listOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}
	query := url.Values{}
	if filter != "" {
		query.Set("$filter", filter)
	}

	group := opts.resourceGroup
	if group == "" {
		cfg, err := ctx.Config()
		if err != nil {
			return util.FlagErrorf("error getting io configuration: %w", err)
		}
		group = cfg.Defaults().Group()
	}
	path := "/subscriptions/{subscriptionId}/resources"
	if group != "" {
		path = "/subscriptions/{subscriptionId}/resourceGroups/" + url.PathEscape(group) + "/resources"
	}

	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	client, err := factory.ResourceManager(ctx.Context(), opts.subscription)
	if err != nil {
		return util.TranslateError(err)
	}

	pager, err := arm.NewPager[arm.GenericResource](client, path, arm.ResourcesAPIVersion, query, opts.paging)
	if err != nil {
		return util.PagingError(err)
	}
	items, err := util.CollectPages(ctx.Context(), iostreams, pager)
	if err != nil {
		return err
	}
	return opts.exporter.Write(iostreams, lo.Map(items, func(r arm.GenericResource, _ int) resource {
		return resource{GenericResource: r, ResourceGroup: arm.ResourceGroupFromID(r.ID)}
	}))
}
