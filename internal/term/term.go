// Package term detects the capabilities of the terminal the process is attached to.
package term

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Term describes stdout of the current process.
type Term struct {
	out          *os.File
	isTTY        bool
	colorEnabled bool
	is256        bool
	hasTrueColor bool
	width        int
	widthPercent int
}

// FromEnv inspects stdout and the environment.
//
// AZ_FORCE_TTY forces terminal behaviour; a numeric value sets the width, a value ending in % a
// percentage of the real width. NO_COLOR disables colours, CLICOLOR_FORCE enables them for
// non-terminals.
func FromEnv() Term {
	t := Term{out: os.Stdout}
	t.isTTY = IsTerminal(os.Stdout)

	if v := os.Getenv("AZ_FORCE_TTY"); v != "" && v != "0" && v != "false" {
		t.isTTY = true
		if p, ok := strings.CutSuffix(v, "%"); ok {
			t.widthPercent, _ = strconv.Atoi(p)
		} else {
			t.width, _ = strconv.Atoi(v)
		}
	}

	_, noColor := os.LookupEnv("NO_COLOR")
	forceColor := os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0"
	switch {
	case noColor:
		t.colorEnabled = false
	case forceColor:
		t.colorEnabled = true
	default:
		t.colorEnabled = t.isTTY && os.Getenv("CLICOLOR") != "0"
	}

	if t.colorEnabled {
		profile := termenv.NewOutput(os.Stdout, termenv.WithTTY(true)).EnvColorProfile()
		t.is256 = profile == termenv.ANSI256 || profile == termenv.TrueColor
		t.hasTrueColor = profile == termenv.TrueColor
	}
	return t
}

func (t Term) IsTerminalOutput() bool {
	return t.isTTY
}

func (t Term) IsColorEnabled() bool {
	return t.colorEnabled
}

func (t Term) Is256ColorSupported() bool {
	return t.is256
}

func (t Term) IsTrueColorSupported() bool {
	return t.hasTrueColor
}

// Theme reports "light" or "dark" based on the terminal background, or "none" when colours are
// disabled.
func (t Term) Theme() string {
	if !t.colorEnabled {
		return "none"
	}
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// Size returns the width and height of the terminal.
func (t Term) Size() (int, int, error) {
	if t.width > 0 {
		return t.width, -1, nil
	}
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return w, h, err
	}
	if t.widthPercent > 0 {
		w = w * t.widthPercent / 100
	}
	return w, h, nil
}

// IsTerminal reports whether f is attached to a terminal, including Cygwin and MSYS pseudo
// terminals.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
