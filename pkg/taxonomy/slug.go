package taxonomy

import (
	"regexp"
	"strings"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non-alphanumeric characters into a dash.
// Leading and trailing dashes are kept, so "C++" becomes "c-".
func Slugify(s string) string {
	return nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
}

// Truncate returns the first n runes of s
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
