package create

import (
	"net/http"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/group/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"go.uber.org/zap"
)

type createOptions struct {
	subscription string
	name         string
	location     string
	tags         []string
	managedBy    string
	exporter     util.Exporter
}

type createRequest struct {
	Location  string            `json:"location"`
	ManagedBy string            `json:"managedBy,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

func NewCmdCreate(ctx util.CmdContext) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new resource group",
		Long: heredoc.Doc(`
			Create a new resource group, or update the location independent properties of an
			existing one. The location defaults to the defaults.location setting.
		`),
		Example: heredoc.Doc(`
			$ az group create -n my-rg -l westeurope --tags env=dev owner=me
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	shared.AddNameFlag(cmd, &opts.name)
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "Location. You can configure the default location using `az config set defaults.location=<location>`")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "Tags in 'key[=value]' format")
	cmd.Flags().StringVar(&opts.managedBy, "managed-by", "", "The ID of the resource that manages this resource group")
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	return cmd
}

func createRun(ctx util.CmdContext, opts *createOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	if opts.name == "" {
		return util.ValidationErrorf("the following arguments are required: --name/-n")
	}
	location := opts.location
	if location == "" {
		cfg, err := ctx.Config()
		if err != nil {
			return util.FlagErrorf("error getting io configuration: %w", err)
		}
		location = cfg.Defaults().Location()
	}
	if location == "" {
		return util.ValidationErrorf("the following arguments are required: --location/-l")
	}
	tags, err := shared.ParseTags(opts.tags)
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

	resp, err := client.Do(ctx.Context(), arm.Request{
		Method:     http.MethodPut,
		Path:       shared.Path(opts.name),
		APIVersion: arm.ResourcesAPIVersion,
		Body:       createRequest{Location: location, ManagedBy: opts.managedBy, Tags: tags},
	})
	if err != nil {
		return util.TranslateError(err)
	}
	zap.L().Sugar().Debugf("resource group %s answered with status %d", opts.name, resp.StatusCode)

	var group arm.ResourceGroup
	if err := resp.Decode(&group); err != nil {
		return err
	}
	return opts.exporter.Write(iostreams, group)
}
