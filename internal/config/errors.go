package config

import (
	"fmt"
	"strings"
)

// KeyNotFoundError is returned when a key is missing from the configuration.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("could not find key %q", e.Key)
}

// Is matches any KeyNotFoundError regardless of the key.
func (e *KeyNotFoundError) Is(target error) bool {
	_, ok := target.(*KeyNotFoundError)
	return ok
}

type InvalidConfigFileError struct {
	Path string
	Err  error
}

func (e *InvalidConfigFileError) Error() string {
	return fmt.Sprintf("invalid config file %s: %s", e.Path, e.Err)
}

func (e *InvalidConfigFileError) Unwrap() error {
	return e.Err
}

// InvalidValueError is returned by Validate for a value outside the allowed set of an option.
type InvalidValueError struct {
	Key           string
	Value         string
	AllowedValues []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s, allowed values: %s", e.Value, e.Key, strings.Join(e.AllowedValues, ", "))
}

// InvalidKeyError is returned for keys that are not in section.key form.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q, expected the form section.key", e.Key)
}
