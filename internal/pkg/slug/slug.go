// Package slug derives URL identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases name and collapses every run of characters outside
// [a-z0-9] into a single hyphen. Leading and trailing runs are kept.
func Make(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
}
