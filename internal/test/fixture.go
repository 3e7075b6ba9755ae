package test

import (
	"bytes"
	"os"
	"testing"

	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/mocks"
	"go.uber.org/mock/gomock"
)

// settingsEnv lists the environment overrides that would leak the settings of the machine
// running the tests into command tests.
var settingsEnv = []string{
	"AZURE_CORE_OUTPUT",
	"AZURE_CORE_ONLY_SHOW_ERRORS",
	"AZURE_CORE_NO_COLOR",
	"AZURE_CORE_PROMPT",
	"AZURE_CORE_PAGER",
	"AZURE_DEFAULTS_GROUP",
	"AZURE_DEFAULTS_LOCATION",
	"AZURE_STORAGE_MAX_CONNECTIONS",
	"AZURE_CLOUD_NAME",
}

// CmdFixture is a mocked command context for command tests.
type CmdFixture struct {
	Ctx      *mocks.MockCmdContext
	Factory  *mocks.MockClientFactory
	ARM      *mocks.MockClient
	Prompter *mocks.MockPrompter
	IO       *iostreams.IOStreams
	In       *bytes.Buffer
	Out      *bytes.Buffer
	ErrOut   *bytes.Buffer
	// ConfigDir receives the configuration files written by the command.
	ConfigDir string
}

// NewCmdFixture returns a fixture whose context serves the yaml configuration cfg. The client
// factory and the prompter are mocks without expectations.
func NewCmdFixture(t *testing.T, cfg string) *CmdFixture {
	t.Helper()
	for _, env := range settingsEnv {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	dir := t.TempDir()
	t.Setenv("AZURE_CONFIG_DIR", dir)

	ctrl := gomock.NewController(t)
	ios, in, out, errOut := iostreams.Test()
	f := &CmdFixture{
		Ctx:       mocks.NewMockCmdContext(ctrl),
		Factory:   mocks.NewMockClientFactory(ctrl),
		ARM:       mocks.NewMockClient(ctrl),
		Prompter:  mocks.NewMockPrompter(ctrl),
		IO:        ios,
		In:        in,
		Out:       out,
		ErrOut:    errOut,
		ConfigDir: dir,
	}
	f.Ctx.EXPECT().IOStreams().Return(ios, nil).AnyTimes()
	f.Ctx.EXPECT().Config().Return(config.NewFromString(cfg), nil).AnyTimes()
	f.Ctx.EXPECT().ClientFactory().Return(f.Factory, nil).AnyTimes()
	f.Ctx.EXPECT().Prompter().Return(f.Prompter, nil).AnyTimes()
	f.Ctx.EXPECT().Context().Return(t.Context()).AnyTimes()
	f.ARM.EXPECT().Endpoint().Return("https://management.azure.com").AnyTimes()
	return f
}

// ExpectARM makes the factory hand out the ARM mock for subscription once.
func (f *CmdFixture) ExpectARM(subscription string) *gomock.Call {
	return f.Factory.EXPECT().ResourceManager(gomock.Any(), subscription).Return(f.ARM, nil)
}

// EnablePrompt makes the streams look like an interactive terminal.
func (f *CmdFixture) EnablePrompt() {
	f.IO.SetStdinTTY(true)
	f.IO.SetStdoutTTY(true)
}
