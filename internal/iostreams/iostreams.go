package iostreams

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cli/safeexec"
	"github.com/google/shlex"
	"github.com/mattn/go-colorable"
	azterm "github.com/tmeckel/az-cli/internal/term"
)

const DefaultWidth = 80

// ErrClosedPagerPipe is the error returned when writing to a pager that has been closed.
type ErrClosedPagerPipe struct {
	error
}

type fileWriter interface {
	io.Writer
	Fd() uintptr
}

type fileReader interface {
	io.ReadCloser
	Fd() uintptr
}

type term interface {
	IsTerminalOutput() bool
	IsColorEnabled() bool
	Is256ColorSupported() bool
	IsTrueColorSupported() bool
	Theme() string
	Size() (int, int, error)
}

type IOStreams struct {
	term term

	In     fileReader
	Out    fileWriter
	ErrOut io.Writer

	colorOverride bool
	colorEnabled  bool

	progressIndicatorEnabled bool
	progressIndicator        *spinner.Spinner
	progressIndicatorMu      sync.Mutex

	stdinTTYOverride  bool
	stdinIsTTY        bool
	stdoutTTYOverride bool
	stdoutIsTTY       bool
	stderrTTYOverride bool
	stderrIsTTY       bool

	pagerCommand string
	pagerProcess *os.Process

	neverPrompt bool
	quiet       bool
}

func (ios *IOStreams) ColorEnabled() bool {
	if ios.colorOverride {
		return ios.colorEnabled
	}
	return ios.term.IsColorEnabled()
}

func (ios *IOStreams) SetColorEnabled(enabled bool) {
	ios.colorOverride = true
	ios.colorEnabled = enabled
}

func (ios *IOStreams) ColorSupport256() bool {
	return ios.ColorEnabled() && ios.term.Is256ColorSupported()
}

func (ios *IOStreams) HasTrueColor() bool {
	return ios.ColorEnabled() && ios.term.IsTrueColorSupported()
}

func (ios *IOStreams) TerminalTheme() string {
	return ios.term.Theme()
}

func (ios *IOStreams) ColorScheme() *ColorScheme {
	return NewColorScheme(ios.ColorEnabled(), ios.ColorSupport256(), ios.HasTrueColor(), ios.TerminalTheme())
}

func (ios *IOStreams) SetStdinTTY(isTTY bool) {
	ios.stdinTTYOverride = true
	ios.stdinIsTTY = isTTY
}

func (ios *IOStreams) IsStdinTTY() bool {
	if ios.stdinTTYOverride {
		return ios.stdinIsTTY
	}
	if stdin, ok := ios.In.(*os.File); ok {
		return azterm.IsTerminal(stdin)
	}
	return false
}

func (ios *IOStreams) SetStdoutTTY(isTTY bool) {
	ios.stdoutTTYOverride = true
	ios.stdoutIsTTY = isTTY
}

func (ios *IOStreams) IsStdoutTTY() bool {
	if ios.stdoutTTYOverride {
		return ios.stdoutIsTTY
	}
	// honours AZ_FORCE_TTY
	return ios.term.IsTerminalOutput()
}

func (ios *IOStreams) SetStderrTTY(isTTY bool) {
	ios.stderrTTYOverride = true
	ios.stderrIsTTY = isTTY
}

func (ios *IOStreams) IsStderrTTY() bool {
	if ios.stderrTTYOverride {
		return ios.stderrIsTTY
	}
	if stderr, ok := ios.ErrOut.(*os.File); ok {
		return azterm.IsTerminal(stderr)
	}
	return false
}

// SetQuiet suppresses warnings and progress output, see --only-show-errors.
func (ios *IOStreams) SetQuiet(quiet bool) {
	ios.quiet = quiet
}

func (ios *IOStreams) Quiet() bool {
	return ios.quiet
}

// Warnf prints a warning to stderr unless quiet.
func (ios *IOStreams) Warnf(format string, args ...any) {
	if ios.quiet {
		return
	}
	fmt.Fprintf(ios.ErrOut, "%s %s\n", ios.ColorScheme().WarningIcon(), fmt.Sprintf(format, args...))
}

func (ios *IOStreams) SetPager(cmd string) {
	ios.pagerCommand = cmd
}

func (ios *IOStreams) GetPager() string {
	return ios.pagerCommand
}

func (ios *IOStreams) StartPager() error {
	if ios.pagerCommand == "" || ios.pagerCommand == "cat" || !ios.IsStdoutTTY() {
		return nil
	}

	pagerArgs, err := shlex.Split(ios.pagerCommand)
	if err != nil {
		return err
	}

	pagerEnv := os.Environ()
	for i := len(pagerEnv) - 1; i >= 0; i-- {
		if strings.HasPrefix(pagerEnv[i], "PAGER=") {
			pagerEnv = append(pagerEnv[0:i], pagerEnv[i+1:]...)
		}
	}
	if _, ok := os.LookupEnv("LESS"); !ok {
		pagerEnv = append(pagerEnv, "LESS=FRX")
	}

	pagerExe, err := safeexec.LookPath(pagerArgs[0])
	if err != nil {
		return err
	}
	pagerCmd := exec.Command(pagerExe, pagerArgs[1:]...)
	pagerCmd.Env = pagerEnv
	pagerCmd.Stdout = ios.Out
	pagerCmd.Stderr = ios.ErrOut
	pagedOut, err := pagerCmd.StdinPipe()
	if err != nil {
		return err
	}
	ios.Out = &fdWriteCloser{
		fd:          ios.Out.Fd(),
		WriteCloser: &pagerWriter{pagedOut},
	}
	if err := pagerCmd.Start(); err != nil {
		return err
	}
	ios.pagerProcess = pagerCmd.Process
	return nil
}

func (ios *IOStreams) StopPager() {
	if ios.pagerProcess == nil {
		return
	}

	// if a pager was started, we're guaranteed to have a WriteCloser
	_ = ios.Out.(io.WriteCloser).Close()
	_, _ = ios.pagerProcess.Wait()
	ios.pagerProcess = nil
}

func (ios *IOStreams) CanPrompt() bool {
	if ios.neverPrompt {
		return false
	}

	return ios.IsStdinTTY() && ios.IsStdoutTTY()
}

func (ios *IOStreams) GetNeverPrompt() bool {
	return ios.neverPrompt
}

func (ios *IOStreams) SetNeverPrompt(v bool) {
	ios.neverPrompt = v
}

// ProgressEnabled reports whether progress can be drawn on stderr.
func (ios *IOStreams) ProgressEnabled() bool {
	return ios.progressIndicatorEnabled && !ios.quiet
}

func (ios *IOStreams) StartProgressIndicator() {
	ios.StartProgressIndicatorWithLabel("")
}

func (ios *IOStreams) StartProgressIndicatorWithLabel(label string) {
	if !ios.ProgressEnabled() {
		return
	}
	ios.progressIndicatorMu.Lock()
	defer ios.progressIndicatorMu.Unlock()

	if ios.progressIndicator != nil {
		if label == "" {
			ios.progressIndicator.Prefix = ""
		} else {
			ios.progressIndicator.Prefix = label + " "
		}
		return
	}

	// https://github.com/briandowns/spinner#available-character-sets
	dotStyle := spinner.CharSets[11]
	sp := spinner.New(dotStyle, 120*time.Millisecond, spinner.WithWriter(ios.ErrOut), spinner.WithColor("fgCyan"))
	if label != "" {
		sp.Prefix = label + " "
	}
	sp.Start()
	ios.progressIndicator = sp
}

func (ios *IOStreams) StopProgressIndicator() {
	ios.progressIndicatorMu.Lock()
	defer ios.progressIndicatorMu.Unlock()
	if ios.progressIndicator == nil {
		return
	}
	ios.progressIndicator.Stop()
	ios.progressIndicator = nil
}

// RunWithProgress shows a spinner labelled label while run executes.
func (ios *IOStreams) RunWithProgress(label string, run func() error) error {
	ios.StartProgressIndicatorWithLabel(label)
	defer ios.StopProgressIndicator()
	return run()
}

// TerminalWidth returns the width of the terminal that controls the process
func (ios *IOStreams) TerminalWidth() int {
	w, _, err := ios.term.Size()
	if err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// ReadUserFile reads fn, or stdin when fn is "-".
func (ios *IOStreams) ReadUserFile(fn string) ([]byte, error) {
	var r io.ReadCloser
	if fn == "-" {
		r = ios.In
	} else {
		var err error
		r, err = os.Open(fn)
		if err != nil {
			return nil, err
		}
	}
	defer r.Close()
	return io.ReadAll(r)
}

func System() *IOStreams {
	terminal := azterm.FromEnv()

	var stdout fileWriter = os.Stdout
	// On Windows with no virtual terminal processing support, translate ANSI escape
	// sequences to console syscalls
	if colorableStdout := colorable.NewColorable(os.Stdout); colorableStdout != os.Stdout {
		// ensure that the file descriptor of the original stdout is preserved
		stdout = &fdWriter{
			fd:     os.Stdout.Fd(),
			Writer: colorableStdout,
		}
	}

	ios := &IOStreams{
		In:           os.Stdin,
		Out:          stdout,
		ErrOut:       colorable.NewColorable(os.Stderr),
		pagerCommand: os.Getenv("PAGER"),
		term:         terminal,
	}

	if ios.IsStdoutTTY() && ios.IsStderrTTY() {
		ios.progressIndicatorEnabled = true
	}

	return ios
}

type fakeTerm struct{}

func (t fakeTerm) IsTerminalOutput() bool {
	return false
}

func (t fakeTerm) IsColorEnabled() bool {
	return false
}

func (t fakeTerm) Is256ColorSupported() bool {
	return false
}

func (t fakeTerm) IsTrueColorSupported() bool {
	return false
}

func (t fakeTerm) Theme() string {
	return ""
}

func (t fakeTerm) Size() (int, int, error) {
	return 80, -1, nil
}

func Test() (*IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	ios := &IOStreams{
		In: &fdReader{
			fd:         0,
			ReadCloser: io.NopCloser(in),
		},
		Out:    &fdWriter{fd: 1, Writer: out},
		ErrOut: errOut,
		term:   &fakeTerm{},
	}
	ios.SetStdinTTY(false)
	ios.SetStdoutTTY(false)
	ios.SetStderrTTY(false)
	return ios, in, out, errOut
}

// pagerWriter implements a WriteCloser that wraps all EPIPE errors in an ErrClosedPagerPipe type.
type pagerWriter struct {
	io.WriteCloser
}

func (w *pagerWriter) Write(d []byte) (int, error) {
	n, err := w.WriteCloser.Write(d)
	if err != nil && (errors.Is(err, io.ErrClosedPipe) || isEpipeError(err)) {
		return n, &ErrClosedPagerPipe{err}
	}
	return n, err
}

// fdWriter represents a wrapped stdout Writer that preserves the original file descriptor
type fdWriter struct {
	io.Writer
	fd uintptr
}

func (w *fdWriter) Fd() uintptr {
	return w.fd
}

// fdWriteCloser represents a wrapped stdout Writer that preserves the original file descriptor
type fdWriteCloser struct {
	io.WriteCloser
	fd uintptr
}

func (w *fdWriteCloser) Fd() uintptr {
	return w.fd
}

// fdReader represents a wrapped stdin ReadCloser that preserves the original file descriptor
type fdReader struct {
	io.ReadCloser
	fd uintptr
}

func (r *fdReader) Fd() uintptr {
	return r.fd
}
