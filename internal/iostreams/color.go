package iostreams

import (
	"fmt"

	"github.com/mgutz/ansi"
)

var (
	magenta  = ansi.ColorFunc("magenta")
	cyan     = ansi.ColorFunc("cyan")
	red      = ansi.ColorFunc("red")
	yellow   = ansi.ColorFunc("yellow")
	blue     = ansi.ColorFunc("blue")
	green    = ansi.ColorFunc("green")
	gray     = ansi.ColorFunc("black+h")
	bold     = ansi.ColorFunc("default+b")
	cyanBold = ansi.ColorFunc("cyan+b")
	greenBld = ansi.ColorFunc("green+b")

	gray256 = func(t string) string {
		return fmt.Sprintf("\x1b[%d;5;%dm%s\x1b[m", 38, 242, t)
	}
)

// ColorScheme applies ANSI colours when they are enabled for the output stream.
type ColorScheme struct {
	enabled      bool
	is256enabled bool
	hasTrueColor bool
	theme        string
}

func NewColorScheme(enabled, is256enabled, trueColor bool, theme string) *ColorScheme {
	return &ColorScheme{
		enabled:      enabled,
		is256enabled: is256enabled,
		hasTrueColor: trueColor,
		theme:        theme,
	}
}

func (c *ColorScheme) Enabled() bool {
	return c.enabled
}

func (c *ColorScheme) apply(fn func(string) string, t string) string {
	if !c.enabled {
		return t
	}
	return fn(t)
}

func (c *ColorScheme) Bold(t string) string      { return c.apply(bold, t) }
func (c *ColorScheme) Red(t string) string       { return c.apply(red, t) }
func (c *ColorScheme) Yellow(t string) string    { return c.apply(yellow, t) }
func (c *ColorScheme) Green(t string) string     { return c.apply(green, t) }
func (c *ColorScheme) GreenBold(t string) string { return c.apply(greenBld, t) }
func (c *ColorScheme) Blue(t string) string      { return c.apply(blue, t) }
func (c *ColorScheme) Cyan(t string) string      { return c.apply(cyan, t) }
func (c *ColorScheme) CyanBold(t string) string  { return c.apply(cyanBold, t) }
func (c *ColorScheme) Magenta(t string) string   { return c.apply(magenta, t) }

func (c *ColorScheme) Gray(t string) string {
	if !c.enabled {
		return t
	}
	if c.is256enabled {
		return gray256(t)
	}
	return gray(t)
}

func (c *ColorScheme) Boldf(t string, args ...any) string {
	return c.Bold(fmt.Sprintf(t, args...))
}

func (c *ColorScheme) SuccessIcon() string {
	return c.SuccessIconWithColor(c.Green)
}

func (c *ColorScheme) SuccessIconWithColor(colo func(string) string) string {
	return colo("✓")
}

func (c *ColorScheme) WarningIcon() string {
	return c.Yellow("!")
}

func (c *ColorScheme) FailureIcon() string {
	return c.FailureIconWithColor(c.Red)
}

func (c *ColorScheme) FailureIconWithColor(colo func(string) string) string {
	return colo("X")
}

// ColorFromString returns the colour function named s, or the identity for unknown names.
func (c *ColorScheme) ColorFromString(s string) func(string) string {
	switch s {
	case "bold":
		return c.Bold
	case "red":
		return c.Red
	case "yellow":
		return c.Yellow
	case "green":
		return c.Green
	case "gray":
		return c.Gray
	case "magenta":
		return c.Magenta
	case "cyan":
		return c.Cyan
	case "blue":
		return c.Blue
	}
	return func(s string) string { return s }
}
