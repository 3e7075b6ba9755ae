package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/tmeckel/az-cli/internal/azure/arm"
	cmdutil "github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/profile"
	"go.uber.org/zap/zapcore"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want exitCode
	}{
		{"generic", errors.New("boom"), exitError},
		{"flag", cmdutil.FlagErrorf("bad flag"), exitUsage},
		{"validation", cmdutil.ValidationErrorf("bad value"), exitUsage},
		{"not found", cmdutil.ResourceNotFoundErrorf("no such group"), exitNotFound},
		{"arm not found", &arm.ResponseError{StatusCode: http.StatusNotFound}, exitNotFound},
		{"arm conflict", &arm.ResponseError{StatusCode: http.StatusConflict}, exitError},
		{"not logged in", profile.ErrNotLoggedIn, exitError},
		{"unknown command", errors.New(`unknown command "foo" for "az"`), exitUsage},
		{"wrapped validation", fmt.Errorf("create: %w", cmdutil.ValidationErrorf("bad")), exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}

	ios, _, _, stderr := iostreams.Test()
	assert.Equal(t, exitOK, handleError(ios, cmd, nil))
	assert.Equal(t, exitUsage, handleError(ios, cmd, cmdutil.ErrCancel))
	assert.Equal(t, exitOK, handleError(ios, cmd, cmdutil.NewNoResultsError("no groups found")))
	assert.Equal(t, exitError, handleError(ios, cmd, cmdutil.ErrSilent))
	assert.Empty(t, stderr.String())

	assert.Equal(t, exitNotFound, handleError(ios, cmd, cmdutil.ResourceNotFoundErrorf("resource group 'rg' could not be found")))
	assert.Equal(t, "ERROR: resource group 'rg' could not be found\n", stderr.String())
}

func TestNewLoggerLevels(t *testing.T) {
	t.Setenv("AZ_DEBUG", "")

	l := newLogger(nil)
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	l = newLogger([]string{"group", "list", "--verbose"})
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l = newLogger([]string{"--only-show-errors"})
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))

	l = newLogger([]string{"--debug"})
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = newLogger([]string{"rest", "--", "--debug"})
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
