package token

import (
	"regexp"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9_\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a value for registry lookups: lowercase, strip
// punctuation, collapse whitespace runs to a single underscore. Values that
// normalize identically are the same token.
func Normalize(value string) string {
	normalized := strings.ToLower(value)
	normalized = nonWordRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, "_")
	return normalized
}
