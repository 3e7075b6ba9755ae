package test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/prompter"
)

const (
	accToggleEnv       = "AZ_ACC_TEST"
	accSubscriptionEnv = "AZ_ACC_SUBSCRIPTION"
	accLocationEnv     = "AZ_ACC_LOCATION"
	accTimeoutEnv      = "AZ_ACC_TIMEOUT"
	accTimeout         = 5 * time.Minute
	accDefaultLocation = "westeurope"
)

type TestCase struct {
	PreCheck func() error
	Steps    []Step
}

// TestContext is the command context of an acceptance test. It acts on the account that is
// logged in on the machine running the tests.
type TestContext interface {
	util.CmdContext
	Subscription() string
	Location() string
	// Out returns what the commands of the test wrote to stdout so far and resets the buffer.
	Out() string
	SetValue(key, value any)
	Value(key any) (any, bool)
}

type acceptanceCmdContext struct {
	util.CmdContext
	baseCtx context.Context
	ios     *iostreams.IOStreams
}

func (a *acceptanceCmdContext) Context() context.Context                 { return a.baseCtx }
func (a *acceptanceCmdContext) IOStreams() (*iostreams.IOStreams, error) { return a.ios, nil }
func (a *acceptanceCmdContext) Prompter() (prompter.Prompter, error)     { return stubPrompter{}, nil }

type testContext struct {
	util.CmdContext
	subscription string
	location     string
	out          *bytes.Buffer
	data         sync.Map
}

var _ util.CmdContext = (*testContext)(nil)

func (tc *testContext) Subscription() string { return tc.subscription }
func (tc *testContext) Location() string     { return tc.location }

func (tc *testContext) Out() string {
	if tc.out == nil {
		return ""
	}
	s := tc.out.String()
	tc.out.Reset()
	return s
}

func (tc *testContext) SetValue(key, value any) {
	if key == nil {
		return
	}
	tc.data.Store(key, value)
}

func (tc *testContext) Value(key any) (any, bool) {
	if key == nil {
		return nil, false
	}
	return tc.data.Load(key)
}

func accTimeoutValue() (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(accTimeoutEnv))
	if v == "" {
		return accTimeout, nil
	}
	if v == "-1" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q, provide a positive duration like \"10m\" or -1", accTimeoutEnv, v)
	}
	return d, nil
}

func newTestContext(t *testing.T) TestContext {
	t.Helper()
	timeout, err := accTimeoutValue()
	if err != nil {
		t.Fatal(err)
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		baseCtx, cancel = context.WithTimeout(context.Background(), timeout)
	}
	t.Cleanup(cancel)

	cmdCtx, err := util.NewCmdContext(baseCtx)
	if err != nil {
		t.Fatalf("failed to create command context: %v", err)
	}
	p, err := cmdCtx.Profile()
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if !util.CheckAuth(p) {
		t.Fatalf("acceptance tests need a logged in account, run 'az login' first")
	}

	ios, _, out, _ := iostreams.Test()
	location := os.Getenv(accLocationEnv)
	if location == "" {
		location = accDefaultLocation
	}
	return &testContext{
		CmdContext: &acceptanceCmdContext{
			CmdContext: cmdCtx,
			baseCtx:    baseCtx,
			ios:        ios,
		},
		subscription: os.Getenv(accSubscriptionEnv),
		location:     location,
		out:          out,
	}
}

type stubPrompter struct{}

var errNoPrompt = errors.New("interactive prompts are disabled in acceptance tests")

func (stubPrompter) Select(string, string, []string) (int, error) { return 0, errNoPrompt }
func (stubPrompter) Input(string, string) (string, error)         { return "", errNoPrompt }
func (stubPrompter) Password(string) (string, error)              { return "", errNoPrompt }
func (stubPrompter) Confirm(string, bool) (bool, error)           { return true, nil }

// Step is one stage of an acceptance test. PostRun always runs, so it is the place to remove
// what Run created.
type Step struct {
	PreRun  func(TestContext) error
	Run     func(TestContext) error
	PostRun func(TestContext) error
	Verify  func(TestContext) error
}

func runStep(ctx TestContext, s Step) error {
	var errs []error

	if s.PreRun != nil {
		if err := s.PreRun(ctx); err != nil {
			return fmt.Errorf("pre: %w", err)
		}
	}

	if s.Run != nil {
		if err := s.Run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("run: %w", err))
		}
	}

	if s.Verify != nil && len(errs) == 0 {
		if err := s.Verify(ctx); err != nil {
			errs = append(errs, fmt.Errorf("verify: %w", err))
		}
	}

	if s.PostRun != nil {
		if err := s.PostRun(ctx); err != nil {
			errs = append(errs, fmt.Errorf("post: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Test runs tc against Azure. It is skipped unless AZ_ACC_TEST is set.
func Test(t *testing.T, tc TestCase) {
	if os.Getenv(accToggleEnv) == "" {
		t.Skipf("Acceptance tests skipped unless env '%s' set", accToggleEnv)
		return
	}

	if tc.PreCheck != nil {
		if err := tc.PreCheck(); err != nil {
			t.Fatalf("test PreCheck failed: %v", err)
		}
	}
	ctx := newTestContext(t)
	for _, s := range tc.Steps {
		if err := runStep(ctx, s); err != nil {
			t.Fatalf("%v", err)
		}
	}
}
