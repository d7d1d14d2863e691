// Package id generates run identifiers.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generate generates a new unique ID.
func Generate() string {
	return uuid.New().String()
}

// GenerateShort generates a shorter unique ID (first 8 chars of UUID).
func GenerateShort() string {
	return uuid.New().String()[:8]
}

// Valid reports whether s is a full run ID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Match resolves a possibly abbreviated ID against known IDs. It returns the
// unique ID with that prefix, or false when none or several match.
func Match(prefix string, ids []string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	found := ""
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			if found != "" {
				return "", false
			}
			found = id
		}
	}
	return found, found != ""
}
