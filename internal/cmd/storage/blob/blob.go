package blob

import (
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/storage/blob/download"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdBlob(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob <command>",
		Short: "Manage object storage for unstructured data (blobs)",
	}

	cmd.AddCommand(download.NewCmdDownload(ctx))

	return cmd
}
