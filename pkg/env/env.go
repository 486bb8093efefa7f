// Package env reads the few settings needed before envconfig runs.
package env

import (
	"os"
	"strings"
)

// FirstNonEmpty returns the first of keys whose value is set and not blank,
// or fallback when none is.
func FirstNonEmpty(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}
