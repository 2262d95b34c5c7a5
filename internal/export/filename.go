package export

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename derives a file-safe base name from a domain name:
// whitespace runs become "_", characters outside [A-Za-z0-9_-] are
// dropped, and the "__" runs left behind by dropped characters collapse.
// "Fire & Life-Safety" becomes "Fire_Life-Safety".
func SanitizeFilename(name string) string {
	s := strings.TrimSpace(name)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = unsafeChars.ReplaceAllString(s, "")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "domain"
	}
	return s
}

// FileNames assigns each domain a unique file name, in the order given.
// When two domains sanitize to the same base, later ones get a numeric
// disambiguator: "Power.md", "Power_2.md".
func FileNames(domains []string, suffix string) map[string]string {
	names := make(map[string]string, len(domains))
	used := make(map[string]bool, len(domains))
	for _, d := range domains {
		if _, done := names[d]; done {
			continue
		}
		base := SanitizeFilename(d)
		name := base + suffix
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, suffix)
		}
		used[name] = true
		names[d] = name
	}
	return names
}
