package engine

import "strings"

// ResolveBySubstring returns the first name, in order, whose lowercase form
// contains the lowercase reference or is contained in it. An empty
// reference matches nothing.
func ResolveBySubstring(ref string, names []string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(ref))
	if r == "" {
		return "", false
	}
	for _, name := range names {
		n := strings.ToLower(name)
		if n == "" {
			continue
		}
		if strings.Contains(n, r) || strings.Contains(r, n) {
			return name, true
		}
	}
	return "", false
}
