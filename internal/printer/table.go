package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tmeckel/az-cli/internal/text"
)

const columnSeparator = "  "

// TablePrinter prints a header, a dashed rule and the rows with aligned columns. In terminal mode
// wide columns are truncated to fit maxWidth and colour functions are applied.
type TablePrinter interface {
	Printer
}

func NewTablePrinter(w io.Writer, isTTY bool, maxWidth int) (TablePrinter, error) {
	if maxWidth <= 0 {
		return nil, fmt.Errorf("invalid table width %d", maxWidth)
	}
	return &tablePrinter{out: w, isTTY: isTTY, maxWidth: maxWidth}, nil
}

type tablePrinter struct {
	out      io.Writer
	isTTY    bool
	maxWidth int
	columns  []string
	rows     [][]tableField
	current  []tableField
}

func (t *tablePrinter) AddColumns(columns ...string) {
	t.columns = append(t.columns, columns...)
}

func (t *tablePrinter) AddField(s string, opts ...FieldOption) {
	f := tableField{text: s, truncateFunc: text.Truncate}
	for _, opt := range opts {
		opt(&f)
	}
	t.current = append(t.current, f)
}

func (t *tablePrinter) AddTimeField(now, ts time.Time, c func(string) string) {
	var s string
	if t.isTTY {
		s = text.FuzzyAgo(now, ts)
	} else {
		s = ts.Format(time.RFC3339)
	}
	t.AddField(s, WithColor(c))
}

func (t *tablePrinter) EndRow() {
	if len(t.current) > 0 {
		t.rows = append(t.rows, t.current)
	}
	t.current = nil
}

func (t *tablePrinter) numColumns() int {
	n := len(t.columns)
	for _, r := range t.rows {
		n = max(n, len(r))
	}
	return n
}

func (t *tablePrinter) widths() []int {
	widths := make([]int, t.numColumns())
	for i, c := range t.columns {
		widths[i] = text.DisplayWidth(c)
	}
	for _, r := range t.rows {
		for i, f := range r {
			widths[i] = max(widths[i], text.DisplayWidth(f.text))
		}
	}
	if !t.isTTY {
		return widths
	}

	// shrink the widest column until the table fits, keeping every column at least minWidth wide
	const minWidth = 5
	available := t.maxWidth - len(columnSeparator)*(len(widths)-1)
	for sum(widths) > available {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minWidth {
			break
		}
		widths[widest] -= min(sum(widths)-available, widths[widest]-minWidth)
	}
	return widths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func (t *tablePrinter) Render() error {
	if len(t.columns) == 0 && len(t.rows) == 0 {
		return nil
	}
	widths := t.widths()
	last := len(widths) - 1

	writeLine := func(cells []string) error {
		_, err := fmt.Fprintln(t.out, strings.TrimRight(strings.Join(cells, columnSeparator), " "))
		return err
	}

	if len(t.columns) > 0 {
		header := make([]string, len(widths))
		rule := make([]string, len(widths))
		for i := range widths {
			name := ""
			if i < len(t.columns) {
				name = t.columns[i]
			}
			header[i] = text.PadRight(widths[i], text.Truncate(widths[i], name))
			rule[i] = strings.Repeat("-", widths[i])
		}
		if err := writeLine(header); err != nil {
			return err
		}
		if err := writeLine(rule); err != nil {
			return err
		}
	}

	for _, r := range t.rows {
		cells := make([]string, len(widths))
		for i := range widths {
			if i >= len(r) {
				cells[i] = strings.Repeat(" ", widths[i])
				continue
			}
			f := r[i]
			s := f.text
			if f.truncateFunc != nil && text.DisplayWidth(s) > widths[i] {
				s = f.truncateFunc(widths[i], s)
			}
			if i < last {
				s = text.PadRight(widths[i], s)
			}
			if t.isTTY && f.colorFunc != nil {
				s = f.colorFunc(s)
			}
			cells[i] = s
		}
		if err := writeLine(cells); err != nil {
			return err
		}
	}
	return nil
}
