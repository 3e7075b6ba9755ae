package iostreams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorSchemeDisabled(t *testing.T) {
	ios, _, _, _ := Test()
	cs := ios.ColorScheme()
	assert.Equal(t, "text", cs.Bold("text"))
	assert.Equal(t, "X", cs.FailureIcon())
	assert.Equal(t, "!", cs.WarningIcon())
}

func TestColorSchemeEnabled(t *testing.T) {
	ios, _, _, _ := Test()
	ios.SetColorEnabled(true)
	cs := ios.ColorScheme()
	assert.True(t, cs.Enabled())
	assert.NotEqual(t, "text", cs.Red("text"))
	assert.Contains(t, cs.Red("text"), "text")
}

func TestProgressBar(t *testing.T) {
	ios, _, _, stderr := Test()
	ios.progressIndicatorEnabled = true

	bar := ios.NewProgressBar("Finished")
	bar.Update(0, 200)
	bar.Update(1, 200000)
	bar.Update(100, 200)
	bar.Update(200, 200)
	bar.Done()
	bar.Update(200, 200)

	out := stderr.String()
	assert.Equal(t, 3, countRune(out, '\r'))
	assert.Contains(t, out, " 50.0%")
	assert.Contains(t, out, "100.0%\n")
}

func TestProgressBarQuiet(t *testing.T) {
	ios, _, _, stderr := Test()
	ios.progressIndicatorEnabled = true
	ios.SetQuiet(true)

	bar := ios.NewProgressBar("Finished")
	bar.Update(10, 20)
	bar.Done()
	assert.Empty(t, stderr.String())
}

func TestRunWithProgressDisabled(t *testing.T) {
	ios, _, _, stderr := Test()
	called := false
	err := ios.RunWithProgress("Working", func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, stderr.String())
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
