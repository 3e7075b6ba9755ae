package logout

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type logoutOptions struct {
	username string
}

func NewCmdLogout(ctx util.CmdContext) *cobra.Command {
	opts := &logoutOptions{}

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out to remove access to Azure subscriptions",
		Long: heredoc.Doc(`
			Log out an account. The subscriptions, the stored secret and the cached tokens of the
			account are removed from the profile. Without --username, the account of the default
			subscription is logged out.
		`),
		Example: heredoc.Doc(`
			$ az logout
			$ az logout --username alice@contoso.com
		`),
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return logoutRun(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "Account user, if missing, logout the current active account")

	util.DisableAuthCheck(cmd)

	return cmd
}

func logoutRun(ctx util.CmdContext, opts *logoutOptions) error {
	p, err := ctx.Profile()
	if err != nil {
		return err
	}

	username := opts.username
	if username == "" {
		def, err := p.Default()
		if err != nil {
			return util.TranslateError(err)
		}
		username = def.User.Name
	}

	if err := p.Logout(username); err != nil {
		return util.TranslateError(err)
	}
	return nil
}
