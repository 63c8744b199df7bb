package contact

import "strings"

// KeywordSeparator joins keywords in single-string encodings.
const KeywordSeparator = ","

// NormalizeSearch maps free-text search input onto the keyword space.
func NormalizeSearch(s string) string {
	s = strings.ReplaceAll(s, KeywordSeparator, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Keywords returns the normalized, deduplicated search keywords of c:
// full name, slug, email, phone, category and each name token.
func Keywords(c *Contact) []string {
	candidates := []string{c.name, c.slug, c.email, c.phone, c.categoryID}
	candidates = append(candidates, strings.Fields(c.name)...)

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, k := range candidates {
		n := NormalizeSearch(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
