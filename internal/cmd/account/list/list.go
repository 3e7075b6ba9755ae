package list

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/account/shared"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap"
)

type listOptions struct {
	all      bool
	refresh  bool
	exporter util.Exporter
}

func NewCmdList(ctx util.CmdContext) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Get a list of subscriptions for the logged in account",
		Example: heredoc.Doc(`
			$ az account list -o table
			$ az account list --refresh --query "[?isDefault].id" -o tsv
		`),
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "List all subscriptions from all clouds, rather than just 'Enabled' ones")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Retrieve up-to-date subscriptions from server")
	util.AddOutputFlags(ctx, cmd, &opts.exporter, shared.TableColumns...)

	// an empty profile yields a warning instead of an error
	util.DisableAuthCheck(cmd)

	return cmd
}

func listRun(ctx util.CmdContext, opts *listOptions) error {
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}
	p, err := ctx.Profile()
	if err != nil {
		return err
	}

	if opts.refresh {
		if err := refresh(ctx, p); err != nil {
			return err
		}
	}

	subs := p.Subscriptions()
	if len(subs) == 0 {
		iostreams.Warnf("Please run 'az login' to access your accounts.")
		return opts.exporter.Write(iostreams, []shared.Subscription{})
	}

	if !opts.all {
		cfg, err := ctx.Config()
		if err != nil {
			return err
		}
		cloud := cfg.Defaults().Cloud()
		subs = lo.Filter(subs, func(s profile.Subscription, _ int) bool {
			return strings.EqualFold(s.State, profile.StateEnabled) &&
				(s.EnvironmentName == "" || strings.EqualFold(s.EnvironmentName, cloud))
		})
	}

	return opts.exporter.Write(iostreams, shared.FromProfileList(subs))
}

// refresh queries the subscriptions of every logged in account again.
func refresh(ctx util.CmdContext, p profile.Store) error {
	factory, err := ctx.ClientFactory()
	if err != nil {
		return err
	}
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return err
	}

	seen := hashset.New()
	for _, s := range p.Subscriptions() {
		key := strings.ToLower(s.User.Type + "|" + s.User.Name)
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)

		var found []profile.Subscription
		err := iostreams.RunWithProgress("Refreshing subscriptions", func() (err error) {
			found, err = factory.Subscriptions(ctx.Context(), s)
			return
		})
		if err != nil {
			return util.TranslateError(err)
		}
		if len(found) == 0 {
			iostreams.Warnf("no subscriptions found for %s, keeping the stored ones", s.User.Name)
			continue
		}
		zap.L().Sugar().Debugf("found %d subscriptions for %s", len(found), s.User.Name)
		if err := p.Replace(s.User, found); err != nil {
			return err
		}
	}
	return p.Save()
}
