package iostreams

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const progressBarWidth = 50

// ProgressBar draws a percentage bar on stderr, e.g. for transfers. Updates are dropped when
// progress output is disabled.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	enabled bool
	last    int
	done    bool
}

func (ios *IOStreams) NewProgressBar(label string) *ProgressBar {
	return &ProgressBar{w: ios.ErrOut, label: label, enabled: ios.ProgressEnabled(), last: -1}
}

// Update redraws the bar when the displayed percentage changed.
func (p *ProgressBar) Update(current, total int64) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	permille := 1000
	if total > 0 {
		permille = int(current * 1000 / total)
	}
	if permille == p.last {
		return
	}
	p.last = permille
	filled := permille * progressBarWidth / 1000
	fmt.Fprintf(p.w, "\r%s[%s%s] %5.1f%%", p.label, strings.Repeat("#", filled), strings.Repeat(" ", progressBarWidth-filled), float64(permille)/10)
}

// Done terminates the line of the bar.
func (p *ProgressBar) Done() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done && p.last >= 0 {
		fmt.Fprintln(p.w)
	}
	p.done = true
}
