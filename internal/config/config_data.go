// Package config reads and writes the az configuration file, config.yml in the configuration
// directory.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tmeckel/az-cli/internal/yamlmap"
)

const (
	azureConfigDir = "AZURE_CONFIG_DIR"
	configFileName = "config.yml"
)

var (
	instance *configData
	once     sync.Once
	loadErr  error
)

// configData is an in memory representation of config.yml. Entries are either string values or
// maps, so the data forms a tree addressed by key paths.
type configData struct {
	entries *yamlmap.Map
	mu      sync.RWMutex
}

func (c *configData) find(keys []string) (*yamlmap.Map, error) {
	m := c.entries
	for _, key := range keys {
		var err error
		m, err = m.FindEntry(key)
		if err != nil {
			return nil, &KeyNotFoundError{Key: key}
		}
	}
	return m, nil
}

// Get a string value. Returns "", KeyNotFoundError if any of the keys can not be found.
func (c *configData) Get(keys []string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := c.find(keys)
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

// GetOrDefault returns the value of keys, or the default of the matching well known option.
func (c *configData) GetOrDefault(keys []string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := c.find(keys)
	if err != nil || m.Value == "" {
		return defaultFor(strings.Join(keys, ".")), nil
	}
	return m.Value, nil
}

// Keys enumerates the keys of the map at keys. Returns nil, KeyNotFoundError if any of the keys can
// not be found.
func (c *configData) Keys(keys []string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := c.find(keys)
	if err != nil {
		return nil, err
	}
	return m.Keys(), nil
}

// Remove an entry, including nested entries. Sections left empty are removed as well.
func (c *configData) Remove(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	parents := []*yamlmap.Map{c.entries}
	m := c.entries
	for _, key := range keys[:len(keys)-1] {
		var err error
		m, err = m.FindEntry(key)
		if err != nil {
			return &KeyNotFoundError{Key: key}
		}
		parents = append(parents, m)
	}
	last := keys[len(keys)-1]
	if err := m.RemoveEntry(last); err != nil {
		return &KeyNotFoundError{Key: last}
	}
	for i := len(parents) - 1; i > 0; i-- {
		if !parents[i].Empty() {
			break
		}
		_ = parents[i-1].RemoveEntry(keys[i-1])
	}
	return nil
}

// Set a string value. Missing intermediate maps are created.
func (c *configData) Set(keys []string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.entries
	for _, key := range keys[:len(keys)-1] {
		entry, err := m.FindEntry(key)
		if err != nil {
			entry = yamlmap.MapValue()
			m.AddEntry(key, entry)
		}
		m = entry
	}
	m.SetEntry(keys[len(keys)-1], yamlmap.StringValue(value))
}

// Read the configuration file once per process.
var Read = func() (*configData, error) {
	once.Do(func() {
		instance, loadErr = load(ConfigFile())
	})
	return instance, loadErr
}

// ReadFromString takes a yaml string and returns a configData.
func ReadFromString(str string) *configData {
	m, _ := yamlmap.Unmarshal([]byte(str))
	if m == nil {
		m = yamlmap.MapValue()
	}
	return &configData{entries: m}
}

// Write stores the configuration if it was modified since it was read.
func Write(c *configData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.entries.IsModified() {
		return nil
	}
	if err := writeFile(ConfigFile(), []byte(c.entries.String())); err != nil {
		return err
	}
	c.entries.SetUnmodified()
	return nil
}

func load(path string) (*configData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m, _ := yamlmap.Unmarshal([]byte(defaultGeneralEntries))
			return &configData{entries: m}, nil
		}
		return nil, err
	}
	m, err := yamlmap.Unmarshal(data)
	if err != nil {
		if errors.Is(err, yamlmap.ErrInvalidYaml) || errors.Is(err, yamlmap.ErrInvalidFormat) {
			return nil, &InvalidConfigFileError{Path: path, Err: err}
		}
		return nil, err
	}
	return &configData{entries: m}, nil
}

// ConfigDir returns the configuration directory: AZURE_CONFIG_DIR, or .azure in the home
// directory.
func ConfigDir() string {
	if dir := os.Getenv(azureConfigDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".azure")
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// AtomicWriteFile replaces path with data, readable by the owner only, creating the parent
// directory when needed. The file is written to a temporary file first and renamed into place, so
// concurrent writers never produce a torn file; the last writer wins.
func AtomicWriteFile(path string, data []byte) error {
	return writeFile(path, data)
}

func writeFile(filename string, data []byte) (writeErr error) {
	if writeErr = os.MkdirAll(filepath.Dir(filename), 0o700); writeErr != nil {
		return
	}
	var file *os.File
	if file, writeErr = os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*"); writeErr != nil {
		return
	}
	defer func() {
		if writeErr != nil {
			_ = os.Remove(file.Name())
		}
	}()
	if writeErr = file.Chmod(0o600); writeErr != nil {
		file.Close()
		return
	}
	if _, writeErr = file.Write(data); writeErr != nil {
		file.Close()
		return
	}
	if writeErr = file.Close(); writeErr != nil {
		return
	}
	writeErr = os.Rename(file.Name(), filename)
	return
}

var defaultGeneralEntries = `
core:
  # The default output format. Supported values: json, jsonc, yaml, yamlc, table, tsv, none
  output: json
  # Suppress warnings. Supported values: true, false
  only_show_errors: "false"
# Aliases allow you to create nicknames for az commands
aliases:
  ls: group list
`
