package config

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	Aliases  = "aliases"
	Core     = "core"
	Defaults = "defaults"

	envPrefix = "AZURE_"
)

// Config is the persistent configuration of az. Keys are paths into the configuration document,
// e.g. []string{"core", "output"}.
type Config interface {
	Keys([]string) ([]string, error)
	Get([]string) (string, error)
	GetOrDefault([]string) (string, error)
	Set([]string, string)
	Remove([]string) error
	Write() error
	Aliases() AliasConfig
	Defaults() DefaultsConfig
}

type ConfigReader interface {
	Read() (*configData, error)
}

type defaultConfigReader struct{}

func (cr *defaultConfigReader) Read() (*configData, error) {
	return Read()
}

var defCfgRdr = &defaultConfigReader{}

// Implements Config interface
type cfg struct {
	cfg         *configData
	aliasCfg    *aliasConfig
	defaultsCfg *defaultsConfig
}

var lookupEnv = os.LookupEnv

func NewConfig() (Config, error) {
	return NewConfigWithReader(defCfgRdr)
}

func NewConfigWithReader(rd ConfigReader) (Config, error) {
	c, err := rd.Read()
	if err != nil {
		return nil, err
	}
	return newConfig(c), nil
}

// NewFromString returns a Config backed by a yaml string. Write stores it in the config directory.
func NewFromString(str string) Config {
	return newConfig(ReadFromString(str))
}

func newConfig(data *configData) *cfg {
	c := &cfg{cfg: data}
	c.aliasCfg = &aliasConfig{cfg: c}
	c.defaultsCfg = &defaultsConfig{cfg: c}
	return c
}

// EnvName returns the environment variable that overrides keys, AZURE_<SECTION>_<KEY>. Only
// section.key pairs outside of the aliases section can be overridden.
func EnvName(keys []string) string {
	if len(keys) != 2 || keys[0] == Aliases {
		return ""
	}
	return envPrefix + strings.ToUpper(keys[0]+"_"+keys[1])
}

func (c *cfg) fromEnv(keys []string) (string, bool) {
	name := EnvName(keys)
	if name == "" {
		return "", false
	}
	v, ok := lookupEnv(name)
	if ok {
		zap.L().Sugar().Debugf("using %s from environment variable %s", strings.Join(keys, "."), name)
	}
	return v, ok
}

func (c *cfg) Keys(keys []string) (values []string, err error) {
	zap.L().Sugar().Debugf("Keys: %+v", keys)

	return c.cfg.Keys(keys)
}

func (c *cfg) Get(keys []string) (string, error) {
	zap.L().Sugar().Debugf("Get: %+v", keys)

	if v, ok := c.fromEnv(keys); ok {
		return v, nil
	}
	return c.cfg.Get(keys)
}

func (c *cfg) GetOrDefault(keys []string) (val string, err error) {
	zap.L().Sugar().Debugf("GetOrDefault: %+v", keys)

	if v, ok := c.fromEnv(keys); ok {
		return v, nil
	}
	return c.cfg.GetOrDefault(keys)
}

func (c *cfg) Set(keys []string, value string) {
	zap.L().Sugar().Debugf("Set: %+v -> %q", keys, value)

	c.cfg.Set(keys, value)
}

func (c *cfg) Remove(keys []string) error {
	zap.L().Sugar().Debugf("Remove: %+v", keys)

	return c.cfg.Remove(keys)
}

func (c *cfg) Write() error {
	return Write(c.cfg)
}

func (c *cfg) Aliases() AliasConfig {
	return c.aliasCfg
}

func (c *cfg) Defaults() DefaultsConfig {
	return c.defaultsCfg
}

// Entry is a flattened configuration value.
type Entry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// List flattens all section.key values of cfg, including well known keys overridden by the
// environment. Aliases are not included.
func List(c Config) []Entry {
	entries := []Entry{}
	seen := map[string]bool{}
	sections, _ := c.Keys(nil)
	for _, section := range sections {
		if section == Aliases {
			continue
		}
		names, err := c.Keys([]string{section})
		if err != nil {
			continue
		}
		for _, name := range names {
			key := []string{section, name}
			v, err := c.Get(key)
			if err != nil {
				continue
			}
			source := "config"
			if env := EnvName(key); env != "" {
				if _, ok := lookupEnv(env); ok {
					source = env
				}
			}
			seen[section+"."+name] = true
			entries = append(entries, Entry{Name: section + "." + name, Value: v, Source: source})
		}
	}
	for _, o := range Options() {
		if seen[o.Key] {
			continue
		}
		key, _ := ParseKey(o.Key)
		env := EnvName(key)
		if v, ok := lookupEnv(env); ok {
			entries = append(entries, Entry{Name: o.Key, Value: v, Source: env})
		}
	}
	return entries
}
