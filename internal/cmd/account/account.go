package account

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/account/clear"
	"github.com/tmeckel/az-cli/internal/cmd/account/getaccesstoken"
	"github.com/tmeckel/az-cli/internal/cmd/account/list"
	"github.com/tmeckel/az-cli/internal/cmd/account/set"
	"github.com/tmeckel/az-cli/internal/cmd/account/show"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdAccount(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account <command>",
		Short: "Manage Azure subscription information",
		Long: heredoc.Doc(`
			Manage the subscriptions of the logged in accounts and the default subscription commands
			act on.
		`),
		GroupID: "core",
	}

	cmd.AddCommand(list.NewCmdList(ctx))
	cmd.AddCommand(show.NewCmdShow(ctx))
	cmd.AddCommand(set.NewCmdSet(ctx))
	cmd.AddCommand(clear.NewCmdClear(ctx))
	cmd.AddCommand(getaccesstoken.NewCmdGetAccessToken(ctx))

	return cmd
}
