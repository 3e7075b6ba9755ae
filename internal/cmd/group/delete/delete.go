package delete

import (
	"fmt"
	"net/http"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	"github.com/tmeckel/az-cli/internal/cmd/group/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type deleteOptions struct {
	subscription string
	name         string
	yes          bool
	noWait       bool
	pollOptions  arm.PollOptions
}

func NewCmdDelete(ctx util.CmdContext) *cobra.Command {
	opts := &deleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a resource group",
		Long: heredoc.Doc(`
			Delete a resource group and all resources it contains. The command waits until
			Azure finished the deletion unless --no-wait is given.
		`),
		Example: heredoc.Doc(`
			$ az group delete -n my-rg --yes --no-wait
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	shared.AddNameFlag(cmd, &opts.name)
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not prompt for confirmation")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "Do not wait for the long-running operation to finish")

	return cmd
}

func deleteRun(ctx util.CmdContext, opts *deleteOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	if opts.name == "" {
		return util.ValidationErrorf("the following arguments are required: --name/-n")
	}

	if !opts.yes {
		if !iostreams.CanPrompt() {
			return util.ValidationErrorf("--yes is required when prompting is disabled")
		}
		prompter, err := ctx.Prompter()
		if err != nil {
			return err
		}
		ok, err := prompter.Confirm(fmt.Sprintf("Are you sure you want to delete resource group %q and all its resources?", opts.name), false)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrCancel
		}
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
		Method:     http.MethodDelete,
		Path:       shared.Path(opts.name),
		APIVersion: arm.ResourcesAPIVersion,
	})
	if err != nil {
		return util.TranslateError(err)
	}
	if opts.noWait || !arm.IsLongRunning(resp) {
		return nil
	}
	err = iostreams.RunWithProgress("Deleting resource group", func() error {
		_, err := arm.PollUntilDone(ctx.Context(), client, resp, opts.pollOptions)
		return err
	})
	return util.TranslateError(err)
}
