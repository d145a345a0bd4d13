package textutil

import "strings"

// SanitizeToken converts value to a lowercase token safe inside a file name.
// Letters, digits, hyphens, and underscores survive; everything else becomes
// an underscore. Returns "unknown" when nothing usable remains.
func SanitizeToken(value string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(value)))
	out = strings.Trim(out, "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
