// Package query evaluates JMESPath expressions given with --query.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// InvalidQueryError reports an expression that fails to compile.
type InvalidQueryError struct {
	Expr string
	Err  error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("argument --query: invalid jmespath_type value: %q", e.Expr)
}

func (e *InvalidQueryError) Unwrap() error {
	return e.Err
}

// Compile validates expr so that a bad query fails before any request is sent.
func Compile(expr string) (*jmespath.JMESPath, error) {
	q, err := jmespath.Compile(expr)
	if err != nil {
		return nil, &InvalidQueryError{Expr: expr, Err: err}
	}
	return q, nil
}

// Normalize converts data into the generic JSON form (maps, slices, float64, string, bool and
// nil) that the expression engine and the renderers operate on.
func Normalize(data any) (any, error) {
	switch data.(type) {
	case nil, string, bool, float64:
		return data, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return out, nil
}

// Search applies expr to data. An empty expression returns the normalized data unchanged.
func Search(expr string, data any) (any, error) {
	v, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return v, nil
	}
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	result, err := q.Search(v)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate query %q: %w", expr, err)
	}
	return result, nil
}
