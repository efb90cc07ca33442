// Package slug derives filesystem-safe post identifiers from titles.
package slug

import "strings"

// Make lowercases title and replaces every rune outside [a-z0-9] and the
// Hangul syllable block with '-', collapsing runs and trimming the ends.
// The result may be empty when title has no usable characters.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	dash := false
	for _, r := range strings.ToLower(title) {
		if allowed(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= '가' && r <= '힣':
		return true
	}
	return false
}
