// Package jq filters JSON responses with jq expressions, see az rest --jq.
package jq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/tmeckel/az-cli/internal/jsonpretty"
)

// ExpressionError reports a jq expression that does not parse or compile.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return e.Err.Error()
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// Compile parses expr. Environment variables are available through $ENV.
func Compile(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		var e *gojq.ParseError
		if errors.As(err, &e) {
			str, line, column := lineColumn(expr, e.Offset-len(e.Token))
			return nil, &ExpressionError{Expr: expr, Err: fmt.Errorf(
				"failed to parse jq expression (line %d, column %d)\n    %s\n    %*c  %w",
				line, column, str, column, '^', err,
			)}
		}
		return nil, &ExpressionError{Expr: expr, Err: fmt.Errorf("failed to parse jq expression %q: %w", expr, err)}
	}

	code, err := gojq.Compile(query, gojq.WithEnvironLoader(os.Environ))
	if err != nil {
		return nil, &ExpressionError{Expr: expr, Err: fmt.Errorf("failed to compile jq expression: %w", err)}
	}
	return code, nil
}

// Evaluate runs expr against the JSON document read from input. Scalars are written raw, one per
// line, like jq --raw-output; other values are written as JSON, indented and coloured on request.
func Evaluate(input io.Reader, output io.Writer, expr string, indent string, colorize bool) error {
	code, err := Compile(expr)
	if err != nil {
		return err
	}
	var doc any
	if err := json.NewDecoder(input).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode JSON input: %w", err)
	}

	iter := code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return err
		}
		if s, ok := scalarString(v); ok {
			if _, err := fmt.Fprintln(output, s); err != nil {
				return err
			}
			continue
		}
		if err := encode(output, v, indent, colorize); err != nil {
			return err
		}
	}
}

func scalarString(v any) (string, bool) {
	switch tt := v.(type) {
	case string:
		return tt, true
	case float64:
		if math.Trunc(tt) == tt && math.Abs(tt) < 1e15 {
			return strconv.FormatFloat(tt, 'f', 0, 64), true
		}
		return strconv.FormatFloat(tt, 'f', -1, 64), true
	case int:
		return strconv.Itoa(tt), true
	case nil:
		return "", true
	case bool:
		return strconv.FormatBool(tt), true
	}
	return "", false
}

func encode(w io.Writer, v any, indent string, colorize bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal jq result: %w", err)
	}
	if indent == "" && !colorize {
		_, err := fmt.Fprintf(w, "%s\n", b)
		return err
	}
	return jsonpretty.Format(w, bytes.NewReader(b), indent, jsonpretty.SchemeFor(colorize))
}

func lineColumn(expr string, offset int) (string, int, int) {
	for line := 1; ; line++ {
		index := strings.Index(expr, "\n")
		if index < 0 {
			return expr, line, offset + 1
		}
		if index >= offset {
			return expr[:index], line, offset + 1
		}
		expr = expr[index+1:]
		offset -= index + 1
	}
}
