package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Shoe Size" → "shoe-size"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	s = slugRegexp.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	return s
}
