// Package jsonpretty pretty-prints JSON and YAML documents for the terminal.
package jsonpretty

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Scheme holds the ANSI sequences used for each token class.
type Scheme struct {
	Delim  string
	Key    string
	Null   string
	String string
	Bool   string
	Number string
	Reset  string
}

// DefaultScheme matches the colours of az output --output jsonc.
var DefaultScheme = &Scheme{
	Delim:  "\x1b[1;38m", // bright white
	Key:    "\x1b[1;34m", // bright blue
	Null:   "\x1b[36m",   // cyan
	String: "\x1b[32m",   // green
	Bool:   "\x1b[33m",   // yellow
	Number: "\x1b[33m",   // yellow
	Reset:  "\x1b[m",
}

// SchemeFor returns DefaultScheme when colorize is set and nil otherwise.
func SchemeFor(colorize bool) *Scheme {
	if colorize {
		return DefaultScheme
	}
	return nil
}

func (s *Scheme) wrap(color, text string) string {
	if s == nil || color == "" {
		return text
	}
	return color + text + s.Reset
}

func (s *Scheme) pick(fn func(*Scheme) string) string {
	if s == nil {
		return ""
	}
	return fn(s)
}

// Format reads JSON from r and writes it to w with one value per line, indented by indent and
// coloured with scheme. A nil scheme disables colours.
func Format(w io.Writer, r io.Reader, indent string, scheme *Scheme) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var (
		idx   int
		stack []json.Delim
		out   bytes.Buffer
	)
	flush := func() error {
		_, err := w.Write(out.Bytes())
		out.Reset()
		return err
	}

	for {
		t, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		switch tt := t.(type) {
		case json.Delim:
			switch tt {
			case '{', '[':
				stack = append(stack, tt)
				idx = 0
				out.WriteString(scheme.wrap(scheme.pick(func(s *Scheme) string { return s.Delim }), tt.String()))
				if dec.More() {
					out.WriteString("\n" + strings.Repeat(indent, len(stack)))
				}
				continue
			case '}', ']':
				stack = stack[:len(stack)-1]
				idx = 0
				out.WriteString(scheme.wrap(scheme.pick(func(s *Scheme) string { return s.Delim }), tt.String()))
			}
		default:
			b, err := marshalJSON(tt)
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}

			isKey := len(stack) > 0 && stack[len(stack)-1] == '{' && idx%2 == 0
			idx++

			var color string
			if scheme != nil {
				switch {
				case isKey:
					color = scheme.Key
				case tt == nil:
					color = scheme.Null
				default:
					switch t.(type) {
					case string:
						color = scheme.String
					case bool:
						color = scheme.Bool
					case json.Number:
						color = scheme.Number
					}
				}
			}
			out.WriteString(scheme.wrap(color, string(b)))

			if isKey {
				out.WriteString(scheme.wrap(scheme.pick(func(s *Scheme) string { return s.Delim }), ":") + " ")
				continue
			}
		}

		switch {
		case dec.More():
			out.WriteString(scheme.wrap(scheme.pick(func(s *Scheme) string { return s.Delim }), ",") + "\n" + strings.Repeat(indent, len(stack)))
		case len(stack) > 0:
			out.WriteString("\n" + strings.Repeat(indent, len(stack)-1))
		default:
			out.WriteString("\n")
		}
		if err := flush(); err != nil {
			return err
		}
	}
	return flush()
}

// marshalJSON works like json.Marshal, but with HTML-escaping disabled.
func marshalJSON(v any) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
