package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/build"
	"github.com/tmeckel/az-cli/internal/cmd/root"
	cmdutil "github.com/tmeckel/az-cli/internal/cmd/util"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type exitCode int

const (
	exitOK       exitCode = 0
	exitError    exitCode = 1
	exitUsage    exitCode = 2
	exitNotFound exitCode = 3
)

func main() {
	zap.ReplaceGlobals(newLogger(os.Args[1:]))
	code := mainRun()
	_ = zap.L().Sync()
	os.Exit(int(code))
}

// newLogger builds the global logger before cobra parses the command line, so the logging flags
// are looked up in the raw arguments.
func newLogger(args []string) *zap.Logger {
	level := zapcore.WarnLevel
	debug, _ := util.IsDebugEnabled()
	for _, a := range args {
		if a == "--" {
			break
		}
		switch a {
		case "--debug":
			debug = true
		case "--verbose":
			level = zapcore.InfoLevel
		case "--only-show-errors":
			level = zapcore.ErrorLevel
		}
	}
	if debug {
		return zap.Must(zap.NewDevelopment())
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = false
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.NameKey = ""
	return zap.Must(cfg.Build())
}

func mainRun() exitCode {
	buildDate := build.Date
	buildVersion := build.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Sugar().Debugf("Version %s, Date %+v", buildVersion, buildDate)
	cmdCtx, err := cmdutil.NewCmdContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create command context: %s\n", err)
		return exitError
	}

	iostrms, err := cmdCtx.IOStreams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get IOStreams: %s\n", err)
		return exitError
	}

	rootCmd, err := root.NewCmdRoot(cmdCtx, buildVersion, buildDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create root command: %s\n", err)
		return exitError
	}

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil && root.HasFailed() {
		return exitError
	}
	return handleError(iostrms, cmd, err)
}

func handleError(iostrms *iostreams.IOStreams, cmd *cobra.Command, err error) exitCode {
	if err == nil {
		return exitOK
	}

	var (
		pagerPipeError *iostreams.ErrClosedPagerPipe
		noResultsError cmdutil.ErrNoResults
		extError       cmdutil.ErrExternalCommandExit
	)
	stderr := iostrms.ErrOut

	switch {
	case errors.Is(err, cmdutil.ErrSilent):
		return exitError
	case cmdutil.IsUserCancellation(err), errors.Is(err, context.Canceled):
		if errors.Is(err, terminal.InterruptErr) {
			// ensure the next shell prompt will start on its own line
			fmt.Fprint(stderr, "\n")
		}
		return exitUsage
	case errors.As(err, &pagerPipeError):
		// ignore the error raised when piping to a closed pager
		return exitOK
	case errors.As(err, &noResultsError):
		if iostrms.IsStdoutTTY() {
			fmt.Fprintln(stderr, noResultsError.Error())
		}
		// no results is not a command failure
		return exitOK
	case errors.As(err, &extError):
		// pass on exit codes of shell aliases
		return exitCode(extError.ExitCode())
	}

	printError(stderr, err, cmd)
	return exitCodeFor(err)
}

func exitCodeFor(err error) exitCode {
	var (
		flagErr    *cmdutil.ErrFlag
		validation *cmdutil.ValidationError
		notFound   *cmdutil.ResourceNotFoundError
	)
	err = cmdutil.TranslateError(err)
	switch {
	case errors.As(err, &flagErr), errors.As(err, &validation):
		return exitUsage
	case errors.As(err, &notFound):
		return exitNotFound
	case strings.HasPrefix(err.Error(), "unknown command "), strings.HasPrefix(err.Error(), "unknown flag"):
		return exitUsage
	}
	return exitError
}

func printError(out io.Writer, err error, cmd *cobra.Command) {
	var dnsError *net.DNSError
	if errors.As(err, &dnsError) {
		debug, _ := util.IsDebugEnabled()
		fmt.Fprintf(out, "error connecting to %s\n", dnsError.Name)
		if debug {
			fmt.Fprintln(out, dnsError)
		}
		fmt.Fprintln(out, "check your internet connection or https://azure.status.microsoft")
		return
	}

	fmt.Fprintf(out, "ERROR: %s\n", err)

	var flagError *cmdutil.ErrFlag
	if cmd != nil && (errors.As(err, &flagError) || strings.HasPrefix(err.Error(), "unknown command ")) {
		if !strings.HasSuffix(err.Error(), "\n") {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, cmd.UsageString())
	}
}
