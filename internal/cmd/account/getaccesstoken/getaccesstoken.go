package getaccesstoken

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/cmd/util"
)

type getAccessTokenOptions struct {
	subscription string
	resource     string
	scopes       []string
	tenant       string
	exporter     util.Exporter
}

type accessToken struct {
	AccessToken  string `json:"accessToken"`
	ExpiresOn    string `json:"expiresOn"`
	ExpiresOnTS  int64  `json:"expires_on"`
	Subscription string `json:"subscription,omitempty"`
	Tenant       string `json:"tenant"`
	TokenType    string `json:"tokenType"`
}

func NewCmdGetAccessToken(ctx util.CmdContext) *cobra.Command {
	opts := &getAccessTokenOptions{}

	cmd := &cobra.Command{
		Use:   "get-access-token",
		Short: "Get a token for utilities to access Azure",
		Long: heredoc.Doc(`
			Get an access token of the account of a subscription. Without --resource or --scope, the
			token is issued for Azure Resource Manager of the active cloud.
		`),
		Example: heredoc.Doc(`
			$ az account get-access-token
			$ az account get-access-token --resource https://storage.azure.com
			$ az account get-access-token --scope https://graph.microsoft.com//.default --query accessToken -o tsv
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.MutuallyExclusive(
				"specify only one of --resource or --scope",
				opts.resource != "",
				len(opts.scopes) > 0,
			); err != nil {
				return err
			}
			if err := util.MutuallyExclusive(
				"specify only one of --subscription or --tenant",
				opts.subscription != "",
				opts.tenant != "",
			); err != nil {
				return err
			}
			return getAccessTokenRun(ctx, opts)
		},
	}

	util.AddSubscriptionFlag(cmd, &opts.subscription)
	cmd.Flags().StringVar(&opts.resource, "resource", "", "Azure resource endpoints in AAD v1.0")
	cmd.Flags().StringSliceVar(&opts.scopes, "scope", nil, "Space-separated AAD scopes in AAD v2.0")
	cmd.Flags().StringVarP(&opts.tenant, "tenant", "t", "", "Tenant ID for which the token is acquired")
	util.AddOutputFlags(ctx, cmd, &opts.exporter)

	return cmd
}

func getAccessTokenRun(ctx util.CmdContext, opts *getAccessTokenOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	cloud, err := factory.Cloud()
	if err != nil {
		return util.TranslateError(err)
	}

	scopes := opts.scopes
	switch {
	case opts.resource != "":
		scopes = []string{azure.ScopeForResource(opts.resource)}
	case len(scopes) == 0:
		scopes = []string{cloud.ARMScope()}
	}

	cred, sub, err := factory.Credential(ctx.Context(), opts.subscription)
	if err != nil {
		return util.TranslateError(err)
	}

	tenant := sub.TenantID
	if opts.tenant != "" {
		tenant = opts.tenant
	}
	tok, err := cred.GetToken(ctx.Context(), policy.TokenRequestOptions{Scopes: scopes, TenantID: tenant})
	if err != nil {
		return util.TranslateError(err)
	}

	result := accessToken{
		AccessToken: tok.Token,
		ExpiresOn:   tok.ExpiresOn.Local().Format("2006-01-02 15:04:05.000000"),
		ExpiresOnTS: tok.ExpiresOn.Unix(),
		Tenant:      tenant,
		TokenType:   "Bearer",
	}
	// a token for another tenant does not belong to the subscription
	if opts.tenant == "" && !sub.IsTenantLevel() {
		result.Subscription = sub.ID
	}
	return opts.exporter.Write(iostreams, result)
}
