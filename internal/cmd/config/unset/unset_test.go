package unset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/mocks"
	"go.uber.org/mock/gomock"
)

func TestUnset(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AZURE_CONFIG_DIR", dir)
	lookupEnv = func(name string) (string, bool) {
		return "eastus", name == "AZURE_DEFAULTS_LOCATION"
	}
	t.Cleanup(func() { lookupEnv = os.LookupEnv })

	ctrl := gomock.NewController(t)
	ios, _, _, stderr := iostreams.Test()
	cfg := config.NewFromString("core:\n  output: table\ndefaults:\n  location: westus\naliases:\n  rgs: group list\n")
	ctx := mocks.NewMockCmdContext(ctrl)
	ctx.EXPECT().IOStreams().Return(ios, nil).AnyTimes()
	ctx.EXPECT().Config().Return(cfg, nil).AnyTimes()

	err := unsetRun(ctx, &unsetOptions{keys: []string{"defaults.location", "aliases.rgs", "core.pager"}})
	require.NoError(t, err)

	assert.Equal(t, "! 'defaults.location' is still set by the environment variable AZURE_DEFAULTS_LOCATION\n! 'core.pager' is not set\n", stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "output: table")
	assert.NotContains(t, string(data), "location")
	assert.NotContains(t, string(data), "rgs")
}

func TestUnsetInvalidKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	ios, _, _, _ := iostreams.Test()
	ctx := mocks.NewMockCmdContext(ctrl)
	ctx.EXPECT().IOStreams().Return(ios, nil).AnyTimes()
	ctx.EXPECT().Config().Return(config.NewFromString(""), nil).AnyTimes()

	err := unsetRun(ctx, &unsetOptions{keys: []string{"output"}})
	var invalid *config.InvalidKeyError
	assert.ErrorAs(t, err, &invalid)
}
