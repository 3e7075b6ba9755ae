package cloud

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/cloud/list"
	"github.com/tmeckel/az-cli/internal/cmd/cloud/set"
	"github.com/tmeckel/az-cli/internal/cmd/cloud/show"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdCloud(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cloud <command>",
		Short:   "Manage registered Azure clouds",
		GroupID: "core",
	}

	util.DisableAuthCheck(cmd)

	cmd.AddCommand(list.NewCmdList(ctx))
	cmd.AddCommand(show.NewCmdShow(ctx))
	cmd.AddCommand(set.NewCmdSet(ctx))

	return cmd
}
