// Package env provides small helpers over the process environment for the
// few lookups that happen before config is loaded.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of the named variable, or fallback when the
// variable is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
