// Package yamlmap is a thin wrapper around yaml.v3 nodes that keeps key order and comments of a
// configuration document intact while it is edited.
package yamlmap

import (
	"errors"

	"gopkg.in/yaml.v3"
)

const modified = "modified"

type Map struct {
	*yaml.Node
}

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidYaml   = errors.New("invalid yaml")
	ErrInvalidFormat = errors.New("invalid format")
)

func StringValue(value string) *Map {
	return &Map{&yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}}
}

func MapValue() *Map {
	return &Map{&yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}}
}

func NullValue() *Map {
	return &Map{&yaml.Node{
		Kind: yaml.ScalarNode,
		Tag:  "!!null",
	}}
}

// Unmarshal parses a yaml document whose root must be a mapping. An empty document yields an empty
// map.
func Unmarshal(data []byte) (*Map, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, ErrInvalidYaml
	}
	if len(root.Content) == 0 {
		return MapValue(), nil
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return nil, ErrInvalidFormat
	}
	return &Map{root.Content[0]}, nil
}

func Marshal(m *Map) ([]byte, error) {
	return yaml.Marshal(m.Node)
}

func (m *Map) AddEntry(key string, value *Map) {
	keyNode := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: key,
	}
	m.Content = append(m.Content, keyNode, value.Node)
	m.SetModified()
}

func (m *Map) Empty() bool {
	return len(m.Content) == 0
}

// FindEntry returns the value stored under key.
// The content of a mapping node is laid out as [key1, value1, key2, value2, ...].
func (m *Map) FindEntry(key string) (*Map, error) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return &Map{m.Content[i+1]}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Map) Keys() []string {
	keys := []string{}
	if m.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

func (m *Map) RemoveEntry(key string) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			m.SetModified()
			return nil
		}
	}
	return ErrNotFound
}

// SetEntry replaces the value under key, keeping the position and comments of the key node, or
// appends a new entry.
func (m *Map) SetEntry(key string, value *Map) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value.Node
			m.SetModified()
			return
		}
	}
	m.AddEntry(key, value)
}

// SetModified marks a mapping node as changed. yaml.v3 nodes carry no such state, so the otherwise
// unused Value field of mapping nodes holds the marker. A null node is promoted to a mapping first.
func (m *Map) SetModified() {
	if m.Kind != yaml.MappingNode && m.Tag == "!!null" {
		m.Kind = yaml.MappingNode
		m.Tag = "!!map"
	}
	if m.Kind == yaml.MappingNode {
		m.Value = modified
	}
}

func (m *Map) SetUnmodified() {
	if m.Kind == yaml.MappingNode {
		m.Value = ""
	}
	for i := 1; i < len(m.Content); i += 2 {
		(&Map{m.Content[i]}).SetUnmodified()
	}
}

// IsModified reports whether the map or any nested map changed since it was read.
func (m *Map) IsModified() bool {
	if m.Kind != yaml.MappingNode {
		return false
	}
	if m.Value == modified {
		return true
	}
	for i := 1; i < len(m.Content); i += 2 {
		if (&Map{m.Content[i]}).IsModified() {
			return true
		}
	}
	return false
}

func (m *Map) String() string {
	data, err := Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
