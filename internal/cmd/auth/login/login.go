package login

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/account/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

type loginOptions struct {
	servicePrincipal     bool
	username             string
	password             string
	tenant               string
	useDeviceCode        bool
	identity             bool
	clientID             string
	allowNoSubscriptions bool
	insecureStorage      bool
	exporter             util.Exporter
}

func NewCmdLogin(ctx util.CmdContext) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.ExactArgs(0),
		Short: "Log in to Azure",
		Long: heredoc.Docf(`
			Log in to Azure.

			By default, az signs in a user account with the device code flow: a code is shown on
			standard error that has to be entered on https://microsoft.com/devicelogin.

			Service principals log in with %[1]s--service-principal%[1]s, the client id, a client secret and
			the tenant. When %[1]s--password%[1]s is omitted, the secret is prompted for. Secrets are kept in
			the credential store of the operating system unless %[1]s--insecure-storage%[1]s is given.

			On Azure resources with a managed identity, use %[1]s--identity%[1]s. A user assigned identity is
			selected with %[1]s--client-id%[1]s.

			The subscriptions the account can access are stored in the profile. The first one becomes
			the default subscription, see %[1]saz account set%[1]s.
		`, "`"),
		Example: heredoc.Doc(`
			# log in interactively with a device code
			$ az login

			# log in with a service principal
			$ az login --service-principal -u <app-id> -p <secret> --tenant <tenant>

			# log in with the system assigned managed identity
			$ az login --identity

			# log in to a tenant without subscriptions
			$ az login --tenant contoso.onmicrosoft.com --allow-no-subscriptions
		`),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.MutuallyExclusive(
				"specify only one of --service-principal, --identity or --use-device-code",
				opts.servicePrincipal,
				opts.identity,
				opts.useDeviceCode,
			); err != nil {
				return err
			}
			return loginRun(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.servicePrincipal, "service-principal", false, "Log in with a service principal")
	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "Client id of the service principal")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Client secret of the service principal")
	cmd.Flags().StringVarP(&opts.tenant, "tenant", "t", "", "The AAD tenant, must be provided when using a service principal")
	cmd.Flags().BoolVar(&opts.useDeviceCode, "use-device-code", false, "Use the device code flow")
	cmd.Flags().BoolVar(&opts.identity, "identity", false, "Log in using the managed identity of the Azure resource")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "Client id of a user assigned managed identity, used with --identity")
	cmd.Flags().BoolVar(&opts.allowNoSubscriptions, "allow-no-subscriptions", false, "Support access to tenants without subscriptions")
	cmd.Flags().BoolVar(&opts.insecureStorage, "insecure-storage", false, "Save the client secret in plain text instead of the credential store")
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	util.DisableAuthCheck(cmd)

	return cmd
}

func (opts *loginOptions) validate() error {
	switch {
	case opts.servicePrincipal:
		if opts.username == "" {
			return util.ValidationErrorf("--username is required for service principal logins")
		}
		if opts.tenant == "" {
			return util.ValidationErrorf("--tenant is required for service principal logins")
		}
	case opts.identity:
		if opts.username != "" || opts.password != "" {
			return util.ValidationErrorf("--username and --password cannot be used with --identity, use --client-id to select a user assigned identity")
		}
	default:
		if opts.clientID != "" {
			return util.ValidationErrorf("--client-id can only be used with --identity")
		}
		if opts.username != "" || opts.password != "" {
			return util.ValidationErrorf("username and password login of user accounts is not supported, use the device code flow or --service-principal")
		}
	}
	return nil
}

func loginRun(ctx util.CmdContext, opts *loginOptions) (err error) {
	if err := opts.validate(); err != nil {
		return err
	}
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	p, err := ctx.Profile()
	if err != nil {
		return err
	}
	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}

	login := azure.LoginOptions{
		TenantID: opts.tenant,
		Prompt:   iostreams.ErrOut,
	}
	switch {
	case opts.servicePrincipal:
		login.Type = profile.UserTypeServicePrincipal
		login.Username = opts.username
		login.Password = opts.password
		if login.Password == "" {
			if !iostreams.CanPrompt() {
				return util.ValidationErrorf("--password is required when prompting is disabled")
			}
			prompter, err := ctx.Prompter()
			if err != nil {
				return err
			}
			login.Password, err = prompter.Password("Password:")
			if err != nil {
				return err
			}
		}
	case opts.identity:
		login.Type = profile.AssignedIdentitySystem
		if opts.clientID != "" {
			login.Type = profile.AssignedIdentityUser
			login.IdentityClientID = opts.clientID
		}
	default:
		login.Type = profile.UserTypeUser
		login.Interactive = true
	}

	var (
		user profile.User
		subs []profile.Subscription
	)
	err = iostreams.RunWithProgress("Logging in", func() error {
		var err error
		user, subs, err = factory.Login(ctx.Context(), login, opts.allowNoSubscriptions)
		return err
	})
	if err != nil {
		return util.TranslateError(err)
	}
	zap.L().Sugar().Debugf("logged in as %s (%s), found %d subscriptions", user.Name, user.Type, len(subs))

	if opts.servicePrincipal {
		if err := p.Secrets().Set(opts.tenant, opts.username, login.Password, opts.insecureStorage); err != nil {
			return err
		}
	}
	if err := p.Replace(user, subs); err != nil {
		return err
	}
	if err := p.Save(); err != nil {
		return err
	}

	if lo.SomeBy(subs, func(s profile.Subscription) bool { return s.IsTenantLevel() }) {
		iostreams.Warnf("tenant level accounts were added for tenants without subscriptions, use 'az account list' to show them")
	}

	mine := lo.Filter(p.Subscriptions(), func(s profile.Subscription, _ int) bool {
		return strings.EqualFold(s.User.Name, user.Name) && s.User.Type == user.Type
	})
	return opts.exporter.Write(iostreams, shared.FromProfileList(mine))
}
