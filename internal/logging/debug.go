package logging

import (
	"os"
	"strconv"
)

// DebugEnabled returns true if debug mode is enabled via the TASKLIST_DEBUG
// environment variable. Any non-empty value other than a false boolean enables it.
func DebugEnabled() bool {
	v := os.Getenv("TASKLIST_DEBUG")
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}
