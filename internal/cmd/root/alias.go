package root

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/cli/safeexec"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/util"
	"go.uber.org/zap"
)

var lingeringPlaceholder = regexp.MustCompile(`\$\d`)

// NewCmdAlias returns a command that re-runs the root command with the expansion of an alias.
// Positional placeholders $1, $2 ... in the expansion are replaced by arguments; remaining
// arguments are appended.
func NewCmdAlias(ctx util.CmdContext, name, expansion string) (*cobra.Command, error) {
	if _, err := shlex.Split(expansion); err != nil {
		return nil, fmt.Errorf("invalid expansion of alias %q: %w", name, err)
	}
	cmd := &cobra.Command{
		Use:                name,
		Short:              fmt.Sprintf("Alias for %q", expansion),
		GroupID:            "alias",
		DisableFlagParsing: true,
		RunE: func(c *cobra.Command, args []string) error {
			expanded, err := expandAlias(expansion, args)
			if err != nil {
				return err
			}
			zap.L().Sugar().Debugf("expanded alias %s to %v", name, expanded)
			root := c.Root()
			root.SetArgs(expanded)
			return root.ExecuteContext(ctx.Context())
		},
	}
	util.DisableAuthCheck(cmd)
	return cmd, nil
}

// NewCmdShellAlias returns a command that runs the expansion of a "!" alias with sh.
func NewCmdShellAlias(ctx util.CmdContext, name, expansion string) (*cobra.Command, error) {
	script := strings.TrimPrefix(expansion, "!")
	cmd := &cobra.Command{
		Use:                name,
		Short:              fmt.Sprintf("Shell alias for %q", abbreviate(script)),
		GroupID:            "alias",
		DisableFlagParsing: true,
		RunE: func(c *cobra.Command, args []string) error {
			sh, err := safeexec.LookPath("sh")
			if err != nil {
				return fmt.Errorf("failed to find sh to run shell alias %s: %w", name, err)
			}
			ios, err := ctx.IOStreams()
			if err != nil {
				return err
			}
			shellArgs := append([]string{"-c", script, name}, args...)
			externalCmd := exec.CommandContext(ctx.Context(), sh, shellArgs...)
			externalCmd.Stdin = ios.In
			externalCmd.Stdout = ios.Out
			externalCmd.Stderr = ios.ErrOut
			externalCmd.Env = os.Environ()
			if err := externalCmd.Run(); err != nil {
				var execError *exec.ExitError
				if errors.As(err, &execError) {
					return util.NewExternalCommandExitError(execError)
				}
				return fmt.Errorf("failed to run shell alias %s: %w", name, err)
			}
			return nil
		},
	}
	util.DisableAuthCheck(cmd)
	return cmd, nil
}

func abbreviate(s string) string {
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

func expandAlias(expansion string, args []string) ([]string, error) {
	extraArgs := []string{}
	for i, a := range args {
		placeholder := fmt.Sprintf("$%d", i+1)
		if !strings.Contains(expansion, placeholder) {
			extraArgs = append(extraArgs, a)
			continue
		}
		expansion = strings.ReplaceAll(expansion, placeholder, a)
	}
	if lingeringPlaceholder.MatchString(expansion) {
		return nil, util.FlagErrorf("not enough arguments for alias: %s", expansion)
	}
	expanded, err := shlex.Split(expansion)
	if err != nil {
		return nil, err
	}
	return append(expanded, extraArgs...), nil
}

// validAliasName reports whether name can be added to root without shadowing a command.
func validAliasName(root *cobra.Command, name string) bool {
	split, err := shlex.Split(name)
	if err != nil || len(split) == 0 {
		return false
	}
	c, _, err := root.Find(split)
	return err != nil || c == root || c.Name() != split[len(split)-1]
}

// validAliasExpansion reports whether expansion starts with an existing command or is a shell alias.
func validAliasExpansion(root *cobra.Command, expansion string) bool {
	if strings.HasPrefix(expansion, "!") {
		return true
	}
	split, err := shlex.Split(expansion)
	if err != nil || len(split) == 0 {
		return false
	}
	c, _, err := root.Find(split)
	return err == nil && c != root
}
