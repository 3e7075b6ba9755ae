package printer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TSVPrinter prints one tab separated line per row without a header, suitable for shell
// scripting.
type TSVPrinter interface {
	Printer
}

func NewTSVPrinter(w io.Writer) (TSVPrinter, error) {
	return &tsvPrinter{out: w}, nil
}

type tsvPrinter struct {
	out     io.Writer
	rows    [][]string
	current []string
}

var _ TSVPrinter = &tsvPrinter{}

// AddColumns is a no-op, the output has no header.
func (p *tsvPrinter) AddColumns(...string) {}

func (p *tsvPrinter) AddField(s string, _ ...FieldOption) {
	p.current = append(p.current, s)
}

func (p *tsvPrinter) AddTimeField(_, t time.Time, _ func(string) string) {
	p.AddField(t.Format(time.RFC3339))
}

func (p *tsvPrinter) EndRow() {
	if p.current != nil {
		p.rows = append(p.rows, p.current)
	}
	p.current = nil
}

func (p *tsvPrinter) Render() error {
	for _, row := range p.rows {
		if _, err := fmt.Fprintln(p.out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
