package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/mocks"
	"go.uber.org/mock/gomock"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "azure-cli 1.2.3 (2026-01-02)\nhttps://github.com/tmeckel/az-cli/releases/tag/v1.2.3\n", Format("v1.2.3", "2026-01-02"))
	assert.Equal(t, "azure-cli DEV\nhttps://github.com/tmeckel/az-cli/releases/latest\n", Format("DEV", ""))
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("AZURE_CORE_OUTPUT", "json")
	ctrl := gomock.NewController(t)
	ios, _, out, _ := iostreams.Test()
	ctx := mocks.NewMockCmdContext(ctrl)
	ctx.EXPECT().IOStreams().Return(ios, nil).AnyTimes()
	ctx.EXPECT().Config().Return(config.NewFromString(""), nil).AnyTimes()

	cmd := NewCmdVersion(ctx, "v2.0.1", "")
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "2.0.1", got["azure-cli"])
	assert.Equal(t, map[string]any{}, got["extensions"])
}

func TestVersionCommandQuery(t *testing.T) {
	t.Setenv("AZURE_CORE_OUTPUT", "json")
	ctrl := gomock.NewController(t)
	ios, _, out, _ := iostreams.Test()
	ctx := mocks.NewMockCmdContext(ctrl)
	ctx.EXPECT().IOStreams().Return(ios, nil).AnyTimes()
	ctx.EXPECT().Config().Return(config.NewFromString(""), nil).AnyTimes()

	cmd := NewCmdVersion(ctx, "2.0.1", "")
	cmd.SetArgs([]string{"--query", `"azure-cli"`, "-o", "tsv"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "2.0.1\n", out.String())
}
