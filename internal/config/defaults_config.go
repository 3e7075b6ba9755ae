package config

import (
	"strconv"
	"strings"
)

// DefaultsConfig gives typed access to the well known options that commands consult.
type DefaultsConfig interface {
	Output() string
	OnlyShowErrors() bool
	NoColor() bool
	Prompt() bool
	Pager() string
	Group() string
	Location() string
	MaxConnections() int
	Cloud() string
	SetCloud(name string) error
}

type defaultsConfig struct {
	cfg Config
}

func (d *defaultsConfig) get(key string) string {
	keys, _ := ParseKey(key)
	v, _ := d.cfg.GetOrDefault(keys)
	return strings.TrimSpace(v)
}

func (d *defaultsConfig) bool(key string) bool {
	b, err := strconv.ParseBool(d.get(key))
	if err != nil {
		return false
	}
	return b
}

func (d *defaultsConfig) Output() string {
	return d.get(KeyOutput)
}

func (d *defaultsConfig) OnlyShowErrors() bool {
	return d.bool(KeyOnlyShowErrors)
}

func (d *defaultsConfig) NoColor() bool {
	return d.bool(KeyNoColor)
}

func (d *defaultsConfig) Prompt() bool {
	return d.get(KeyPrompt) != "disabled"
}

func (d *defaultsConfig) Pager() string {
	return d.get(KeyPager)
}

func (d *defaultsConfig) Group() string {
	return d.get(KeyDefaultGroup)
}

func (d *defaultsConfig) Location() string {
	return d.get(KeyDefaultLocation)
}

// MaxConnections falls back to the default when the stored value is not a positive number.
func (d *defaultsConfig) MaxConnections() int {
	n, err := strconv.Atoi(d.get(KeyMaxConnections))
	if err != nil || n < 1 {
		n, _ = strconv.Atoi(defaultFor(KeyMaxConnections))
	}
	return n
}

func (d *defaultsConfig) Cloud() string {
	return d.get(KeyCloud)
}

func (d *defaultsConfig) SetCloud(name string) error {
	if err := Validate(KeyCloud, name); err != nil {
		return err
	}
	keys, _ := ParseKey(KeyCloud)
	d.cfg.Set(keys, name)
	return d.cfg.Write()
}
