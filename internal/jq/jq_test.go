package jq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groups = `{"value":[{"name":"rg-web","location":"westeurope","tags":{"env":"prod"}},{"name":"rg-data","location":"eastus","tags":null}]}`

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "raw strings", expr: ".value[].name", want: "rg-web\nrg-data\n"},
		{name: "numbers", expr: ".value | length", want: "2\n"},
		{name: "null", expr: ".value[1].tags", want: "\n"},
		{name: "objects", expr: ".value[0].tags", want: "{\"env\":\"prod\"}\n"},
		{name: "halt", expr: "halt", want: ""},
		{name: "env", expr: `$ENV | has("PATH")`, want: "true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			require.NoError(t, Evaluate(strings.NewReader(groups), out, tt.expr, "", false))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestEvaluateIndented(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, Evaluate(strings.NewReader(groups), out, ".value[0].tags", "  ", false))
	assert.Equal(t, "{\n  \"env\": \"prod\"\n}\n", out.String())
}

func TestEvaluateParseError(t *testing.T) {
	err := Evaluate(strings.NewReader(groups), &bytes.Buffer{}, ".value[", "", false)
	var exprErr *ExpressionError
	require.ErrorAs(t, err, &exprErr)
	assert.Contains(t, err.Error(), "failed to parse jq expression")
}

func TestEvaluateInvalidInput(t *testing.T) {
	err := Evaluate(strings.NewReader("not json"), &bytes.Buffer{}, ".", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode JSON input")
}

func TestEvaluateRuntimeError(t *testing.T) {
	err := Evaluate(strings.NewReader(groups), &bytes.Buffer{}, `error("boom")`, "", false)
	require.Error(t, err)
}
