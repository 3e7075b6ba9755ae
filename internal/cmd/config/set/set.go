package set

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/config"
)

type setting struct {
	keys  []string
	value string
}

type setOptions struct {
	pairs []string
}

func NewCmdConfigSet(ctx util.CmdContext) *cobra.Command {
	opts := &setOptions{}

	cmd := &cobra.Command{
		Use:   "set <key>=<value>...",
		Short: "Set configurations",
		Example: heredoc.Doc(`
			$ az config set core.output=table
			$ az config set defaults.group=rg1 defaults.location=westeurope
			$ az config set core.prompt=disabled
			$ az config set "aliases.rgs=group list -o table"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pairs = args

			return setRun(ctx, opts)
		},
	}

	return cmd
}

func parsePair(pair string) (setting, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return setting{}, util.FlagErrorf("expected <key>=<value>, got %q", pair)
	}
	keys, err := config.ParseKey(key)
	if err != nil {
		return setting{}, err
	}
	return setting{keys: keys, value: value}, nil
}

func setRun(ctx util.CmdContext, opts *setOptions) (err error) {
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}

	// validate everything before the first value is changed
	settings := make([]setting, 0, len(opts.pairs))
	for _, pair := range opts.pairs {
		s, err := parsePair(pair)
		if err != nil {
			return err
		}
		key := strings.Join(s.keys, ".")
		if err := config.Validate(key, s.value); err != nil {
			return err
		}
		if s.keys[0] != config.Aliases && !config.IsKnownKey(key) {
			iostreams.Warnf("'%s' is not a known configuration key", key)
		}
		settings = append(settings, s)
	}

	for _, s := range settings {
		if s.keys[0] == config.Aliases {
			if err := cfg.Aliases().Add(s.keys[1], s.value); err != nil {
				return util.ValidationErrorf("%s", err)
			}
			continue
		}
		cfg.Set(s.keys, s.value)
	}

	err = cfg.Write()
	if err != nil {
		return fmt.Errorf("failed to write config to disk: %w", err)
	}
	return
}
