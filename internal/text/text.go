// Package text is a set of utility functions for text processing and outputting to the terminal.
package text

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ellipsis            = "..."
	minWidthForEllipsis = len(ellipsis) + 2
)

var indentRE = regexp.MustCompile(`(?m)^`)

// Indent returns a copy of the string s with indent prefixed to it, will apply indent
// to each line of the string.
func Indent(s, indent string) string {
	if len(strings.TrimSpace(s)) == 0 {
		return s
	}
	return indentRE.ReplaceAllLiteralString(s, indent)
}

// DisplayWidth calculates what the rendered width of string s will be.
func DisplayWidth(s string) int {
	return lipgloss.Width(s)
}

// Truncate returns a copy of the string s that has been shortened to fit the maximum display width.
func Truncate(maxWidth int, s string) string {
	w := DisplayWidth(s)
	if w <= maxWidth {
		return s
	}
	tail := ""
	if maxWidth >= minWidthForEllipsis {
		tail = ellipsis
	}
	r := truncate.StringWithTail(s, uint(maxWidth), tail) //nolint:gosec
	if DisplayWidth(r) < maxWidth {
		r += " "
	}
	return r
}

// PadRight returns a copy of the string s that has been padded on the right with whitespace to fit
// the maximum display width.
func PadRight(maxWidth int, s string) string {
	if padWidth := maxWidth - DisplayWidth(s); padWidth > 0 {
		s += strings.Repeat(" ", padWidth)
	}
	return s
}

// Pluralize returns a concatenated string with num and the plural form of thing if necessary.
func Pluralize(num int, thing string) string {
	if num == 1 {
		return fmt.Sprintf("%d %s", num, thing)
	}
	return fmt.Sprintf("%d %ss", num, thing)
}

func fmtDuration(amount int, unit string) string {
	return fmt.Sprintf("about %s ago", Pluralize(amount, unit))
}

// RelativeTimeAgo returns a human readable string of the time duration between a and b that is estimated
// to the nearest unit of time.
func RelativeTimeAgo(a, b time.Time) string {
	ago := a.Sub(b)

	if ago < time.Minute {
		return "less than a minute ago"
	}
	if ago < time.Hour {
		return fmtDuration(int(ago.Minutes()), "minute")
	}
	if ago < 24*time.Hour {
		return fmtDuration(int(ago.Hours()), "hour")
	}
	if ago < 30*24*time.Hour {
		return fmtDuration(int(ago.Hours())/24, "day")
	}
	if ago < 365*24*time.Hour {
		return fmtDuration(int(ago.Hours())/24/30, "month")
	}

	return fmtDuration(int(ago.Hours()/24/365), "year")
}

// CapitalizeFirst upper-cases the first rune of s, e.g. "provisioningState" becomes
// "ProvisioningState".
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB"}

// FormatBytes renders n as a human readable size using binary units.
func FormatBytes(n int64) string {
	if n < 1024 {
		return message.NewPrinter(language.English).Sprintf("%d bytes", n)
	}
	v := float64(n) / 1024
	unit := byteUnits[0]
	for _, u := range byteUnits[1:] {
		if v < 1024 {
			break
		}
		v /= 1024
		unit = u
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func FuzzyAgo(a, b time.Time) string {
	return RelativeTimeAgo(a, b)
}

// FormatSliceBuilder provides a fluent API to format string slices.
type FormatSliceBuilder struct {
	items   []string
	prepend string
	append  string
}

// NewSliceFormatter constructs a builder for the provided items.
func NewSliceFormatter(items []string) *FormatSliceBuilder {
	return &FormatSliceBuilder{items: items}
}

// WithPrepend sets a string to place before each element.
func (b *FormatSliceBuilder) WithPrepend(s string) *FormatSliceBuilder {
	b.prepend = s
	return b
}

// WithAppend sets a string to place after each element.
func (b *FormatSliceBuilder) WithAppend(s string) *FormatSliceBuilder {
	b.append = s
	return b
}

// String joins the decorated elements with a comma.
func (b *FormatSliceBuilder) String() string {
	out := make([]string, len(b.items))
	for i, v := range b.items {
		out[i] = b.prepend + v + b.append
	}
	return strings.Join(out, ", ")
}
