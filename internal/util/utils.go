package util

import (
	"os"
)

// IsDebugEnabled reports whether AZ_DEBUG asks for debug logging. The raw value is returned as well.
func IsDebugEnabled() (bool, string) {
	debugValue, isDebugSet := os.LookupEnv("AZ_DEBUG")
	if !isDebugSet {
		return false, ""
	}
	switch debugValue {
	case "false", "0", "no", "":
		return false, debugValue
	default:
		return true, debugValue
	}
}
