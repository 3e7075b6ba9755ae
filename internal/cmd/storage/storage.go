package storage

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/storage/blob"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

func NewCmdStorage(ctx util.CmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage <command>",
		Short: "Manage Azure Cloud Storage resources",
		Long: heredoc.Doc(`
			Work with the data of Azure storage accounts.

			The account is selected with --account-name or AZURE_STORAGE_ACCOUNT. Credentials are
			taken from --sas-token, --account-key or the logged in account with --auth-mode login,
			in that order. Without any of them the account key is looked up through Resource Manager.
		`),
		GroupID: "storage",
	}

	cmd.AddCommand(blob.NewCmdBlob(ctx))

	return cmd
}
