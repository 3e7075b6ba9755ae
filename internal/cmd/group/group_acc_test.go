package group

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/cmd/group/create"
	"github.com/tmeckel/az-cli/internal/cmd/group/delete"
	"github.com/tmeckel/az-cli/internal/cmd/group/exists"
	"github.com/tmeckel/az-cli/internal/test"
)

func run(ctx test.TestContext, cmd *cobra.Command, args ...string) error {
	if sub := ctx.Subscription(); sub != "" {
		args = append(args, "--subscription", sub)
	}
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	return cmd.Execute()
}

func TestAccGroupLifecycle(t *testing.T) {
	name := "az-acc-" + uuid.NewString()[:8]

	exist := func(ctx test.TestContext, want string) error {
		ctx.Out()
		if err := run(ctx, exists.NewCmdExists(ctx), "-n", name, "-o", "json"); err != nil {
			return err
		}
		if got := strings.TrimSpace(ctx.Out()); got != want {
			return fmt.Errorf("az group exists returned %q, expected %q", got, want)
		}
		return nil
	}

	test.Test(t, test.TestCase{
		Steps: []test.Step{
			{
				Run: func(ctx test.TestContext) error {
					return run(ctx, create.NewCmdCreate(ctx), "-n", name, "-l", ctx.Location(), "--tags", "purpose=acceptance", "-o", "none")
				},
				Verify: func(ctx test.TestContext) error {
					return exist(ctx, "true")
				},
				PostRun: func(ctx test.TestContext) error {
					return run(ctx, delete.NewCmdDelete(ctx), "-n", name, "--yes")
				},
			},
			{
				Verify: func(ctx test.TestContext) error {
					return exist(ctx, "false")
				},
			},
		},
	})
}
