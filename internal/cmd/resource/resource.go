package resource

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/resource/list"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdResource(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource <command>",
		Short:   "Manage Azure resources",
		GroupID: "resources",
	}

	cmd.AddCommand(list.NewCmdList(ctx))

	return cmd
}
