package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/jsonpretty"
	"github.com/tmeckel/az-cli/internal/printer"
	"github.com/tmeckel/az-cli/internal/query"
	"github.com/tmeckel/az-cli/internal/text"
	"gopkg.in/yaml.v3"
)

const (
	OutputJSON   = "json"
	OutputJSONC  = "jsonc"
	OutputYAML   = "yaml"
	OutputYAMLC  = "yamlc"
	OutputTable  = "table"
	OutputTSV    = "tsv"
	OutputNone   = "none"
	resultColumn = "Result"
)

var OutputFormats = []string{OutputJSON, OutputJSONC, OutputYAML, OutputYAMLC, OutputTable, OutputTSV, OutputNone}

// TableColumn selects a value of a result object for --output table. Path is a JMESPath
// expression evaluated against each object.
type TableColumn struct {
	Header string
	Path   string
}

func Column(header, path string) TableColumn {
	return TableColumn{Header: header, Path: path}
}

// Exporter renders the result of a command in the selected output format.
type Exporter interface {
	Format() string
	Query() string
	Write(ios *iostreams.IOStreams, data any) error
}

type exporter struct {
	format  string
	query   string
	columns []TableColumn
}

// NewExporter validates format and the query expression. The columns shape table and tsv
// output when no query is given.
func NewExporter(format, expr string, columns ...TableColumn) (Exporter, error) {
	if format == "" {
		format = OutputJSON
	}
	if !slices.Contains(OutputFormats, format) {
		return nil, FlagErrorf("invalid value %q for --output: valid values are {%s}", format, strings.Join(OutputFormats, "|"))
	}
	if expr != "" {
		if _, err := query.Compile(expr); err != nil {
			return nil, FlagErrorWrap(err)
		}
	}
	return &exporter{format: format, query: expr, columns: columns}, nil
}

// AddOutputFlags adds --output and --query to cmd. Before the command runs, the flags are resolved
// into an Exporter stored in exportTarget. Without --output the core.output setting applies.
func AddOutputFlags(ctx CmdContext, cmd *cobra.Command, exportTarget *Exporter, columns ...TableColumn) {
	var (
		format string
		expr   string
	)
	StringEnumFlag(cmd, &format, "output", "o", OutputJSON, OutputFormats, "Output format")
	cmd.Flags().StringVar(&expr, "query", "", "JMESPath query string. See http://jmespath.org/ for more information and examples")

	oldPreRun := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if oldPreRun != nil {
			if err := oldPreRun(c, args); err != nil {
				return err
			}
		}
		if !c.Flags().Changed("output") {
			if cfg, err := ctx.Config(); err == nil {
				if v := cfg.Defaults().Output(); v != "" {
					format = v
				}
			}
		}
		export, err := NewExporter(format, expr, columns...)
		if err != nil {
			return err
		}
		*exportTarget = export
		return nil
	}

	if len(columns) == 0 {
		return
	}
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["help:table-columns"] = strings.Join(lo.Map(columns, func(c TableColumn, _ int) string { return c.Header }), ",")
}

func (e *exporter) Format() string {
	return e.format
}

func (e *exporter) Query() string {
	return e.query
}

func (e *exporter) Write(ios *iostreams.IOStreams, data any) error {
	result, err := query.Search(e.query, data)
	if err != nil {
		return err
	}

	switch e.format {
	case OutputNone:
		return nil
	case OutputJSON, OutputJSONC:
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return jsonpretty.Format(ios.Out, bytes.NewReader(b), "  ", jsonpretty.SchemeFor(e.format == OutputJSONC))
	case OutputYAML, OutputYAMLC:
		if result == nil {
			return nil
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		return jsonpretty.FormatYAML(ios.Out, &buf, jsonpretty.SchemeFor(e.format == OutputYAMLC))
	case OutputTable:
		width := 80
		if ios.IsStdoutTTY() {
			width = ios.TerminalWidth()
		}
		tp, err := printer.NewTablePrinter(ios.Out, ios.IsStdoutTTY(), width)
		if err != nil {
			return err
		}
		return e.render(tp, result, true)
	case OutputTSV:
		tp, err := printer.NewTSVPrinter(ios.Out)
		if err != nil {
			return err
		}
		return e.render(tp, result, false)
	}
	return printer.NewUnsupportedPrinterError(e.format)
}

// render lays out result as rows. A list of objects yields one row per object, a single object one
// row and scalars a single column.
func (e *exporter) render(p printer.Printer, result any, header bool) error {
	if result == nil {
		return nil
	}
	items, ok := result.([]any)
	if !ok {
		items = []any{result}
	}
	if len(items) == 0 {
		return nil
	}

	if !hasObjects(items) {
		// a list of lists, as produced by multiselect queries, yields one cell per element
		width := 0
		for _, item := range items {
			if l, ok := item.([]any); ok {
				width = max(width, len(l))
			}
		}
		if header {
			if width == 0 {
				p.AddColumns(resultColumn)
			} else {
				p.AddColumns(lo.Times(width, func(i int) string { return fmt.Sprintf("Column%d", i+1) })...)
			}
		}
		for _, item := range items {
			l, ok := item.([]any)
			if !ok {
				l = []any{item}
			}
			for _, v := range l {
				p.AddField(formatCell(v))
			}
			p.EndRow()
		}
		return p.Render()
	}

	columns := e.columns
	if e.query != "" || len(columns) == 0 {
		columns = scalarColumns(items)
	}
	if len(columns) == 0 {
		return nil
	}
	if header {
		p.AddColumns(lo.Map(columns, func(c TableColumn, _ int) string { return c.Header })...)
	}
	for _, item := range items {
		for _, c := range columns {
			v, err := jmespath.Search(c.Path, item)
			if err != nil {
				v = nil
			}
			p.AddField(formatCell(v))
		}
		p.EndRow()
	}
	return p.Render()
}

func hasObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			return true
		}
	}
	return false
}

// scalarColumns returns the sorted union of the keys holding scalar values.
func scalarColumns(items []any) []TableColumn {
	keys := map[string]bool{}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			keys[k] = true
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	slices.Sort(names)

	columns := make([]TableColumn, 0, len(names))
	for _, k := range names {
		columns = append(columns, TableColumn{Header: text.CapitalizeFirst(k), Path: quoteIdentifier(k)})
	}
	return columns
}

func quoteIdentifier(k string) string {
	b, _ := json.Marshal(k)
	return string(b)
}

func formatCell(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		if vv {
			return "True"
		}
		return "False"
	case float64:
		if vv == float64(int64(vv)) {
			return strconv.FormatInt(int64(vv), 10)
		}
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(vv)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(vv)
	}
}
