package exists

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/group/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type existsOptions struct {
	subscription string
	name         string
	exporter     util.Exporter
}

func NewCmdExists(ctx util.CmdContext) *cobra.Command {
	opts := &existsOptions{}

	cmd := &cobra.Command{
		Use:   "exists",
		Short: "Check if a resource group exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return existsRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	shared.AddNameFlag(cmd, &opts.name)
	util.AddOutputFlags(ctx, cmd, &opts.exporter)

	return cmd
}

func existsRun(ctx util.CmdContext, opts *existsOptions) error {
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

	found := true
	_, err = client.Do(ctx.Context(), arm.Request{
		Method:     http.MethodHead,
		Path:       shared.Path(name),
		APIVersion: arm.ResourcesAPIVersion,
	})
	if err != nil {
		var respErr *arm.ResponseError
		if !errors.As(err, &respErr) || !respErr.NotFound() {
			return util.TranslateError(err)
		}
		found = false
	}
	return opts.exporter.Write(iostreams, found)
}
