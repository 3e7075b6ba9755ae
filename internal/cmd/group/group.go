package group

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/group/create"
	"github.com/tmeckel/az-cli/internal/cmd/group/delete"
	"github.com/tmeckel/az-cli/internal/cmd/group/exists"
	"github.com/tmeckel/az-cli/internal/cmd/group/list"
	"github.com/tmeckel/az-cli/internal/cmd/group/show"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdGroup(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group <command>",
		Short: "Manage resource groups",
		Long: heredoc.Doc(`
			Manage resource groups of a subscription. The subscription defaults to the
			one selected with 'az account set'.
		`),
		GroupID: "resources",
	}

	cmd.AddCommand(list.NewCmdList(ctx))
	cmd.AddCommand(show.NewCmdShow(ctx))
	cmd.AddCommand(exists.NewCmdExists(ctx))
	cmd.AddCommand(create.NewCmdCreate(ctx))
	cmd.AddCommand(delete.NewCmdDelete(ctx))

	return cmd
}
