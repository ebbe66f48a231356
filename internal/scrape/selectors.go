package scrape

import "strings"

// ParseSelectors splits the raw selector field (one per line, or
// comma-separated) into an ordered list. Entries are trimmed and empties
// dropped; order is significant downstream, so it is preserved.
func ParseSelectors(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})

	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
