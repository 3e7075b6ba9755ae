package unset

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/config"
)

var lookupEnv = os.LookupEnv

type unsetOptions struct {
	keys []string
}

func NewCmdConfigUnset(ctx util.CmdContext) *cobra.Command {
	opts := &unsetOptions{}

	cmd := &cobra.Command{
		Use:   "unset <key>...",
		Short: "Unset configurations",
		Example: heredoc.Doc(`
			$ az config unset core.output
			$ az config unset defaults.group defaults.location
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.keys = args
			return unsetRun(ctx, opts)
		},
	}

	return cmd
}

func unsetRun(ctx util.CmdContext, opts *unsetOptions) error {
	cfg, err := ctx.Config()
	if err != nil {
		return util.FlagErrorf("error getting io configuration: %w", err)
	}
	iostreams, err := ctx.IOStreams()
	if err != nil {
		return util.FlagErrorf("error getting io streams: %w", err)
	}

	for _, key := range opts.keys {
		keys, err := config.ParseKey(key)
		if err != nil {
			return err
		}
		if keys[0] == config.Aliases {
			err = cfg.Aliases().Delete(keys[1])
		} else {
			err = cfg.Remove(keys)
		}
		if errors.Is(err, &config.KeyNotFoundError{}) {
			iostreams.Warnf("'%s' is not set", key)
			continue
		}
		if err != nil {
			return err
		}
		if env := config.EnvName(keys); env != "" {
			if _, ok := lookupEnv(env); ok {
				iostreams.Warnf("'%s' is still set by the environment variable %s", key, env)
			}
		}
	}

	if err := cfg.Write(); err != nil {
		return fmt.Errorf("failed to write config to disk: %w", err)
	}
	return nil
}
