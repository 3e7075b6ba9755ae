package jsonpretty

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// yamlKey matches "  key: value" and "- key: value" lines of block style YAML.
var yamlKey = regexp.MustCompile(`^(\s*(?:-\s+)*)([^\s:#'"][^:#]*?|'[^']*'|"[^"]*"):(\s|$)(.*)$`)

// FormatYAML colours block style YAML line by line. Keys use the key colour and scalar values the
// colour of their type; anything it does not recognise is copied unchanged.
func FormatYAML(w io.Writer, r io.Reader, scheme *Scheme) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if scheme != nil {
			line = colorYAMLLine(line, scheme)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func colorYAMLLine(line string, s *Scheme) string {
	m := yamlKey.FindStringSubmatch(line)
	if m == nil {
		if prefix, value, ok := strings.Cut(line, "- "); ok && strings.TrimSpace(prefix) == "" {
			return prefix + "- " + colorYAMLScalar(value, s)
		}
		return line
	}
	return m[1] + s.wrap(s.Key, m[2]) + ":" + m[3] + colorYAMLScalar(m[4], s)
}

func colorYAMLScalar(v string, s *Scheme) string {
	switch {
	case v == "" || v == "|" || v == ">" || v == "|-" || v == ">-" || v == "[]" || v == "{}":
		return v
	case v == "null" || v == "~":
		return s.wrap(s.Null, v)
	case v == "true" || v == "false":
		return s.wrap(s.Bool, v)
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return s.wrap(s.Number, v)
	}
	return s.wrap(s.String, v)
}
