package clear

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdClear(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all subscriptions from the CLI's local cache",
		Long:  "Clear all subscriptions, stored secrets and cached tokens. To clear a single account, use 'az logout'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearRun(ctx)
		},
	}

	util.DisableAuthCheck(cmd)

	return cmd
}

func clearRun(ctx util.CmdContext) error {
	p, err := ctx.Profile()
	if err != nil {
		return err
	}
	return p.Clear()
}
