package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s, collapses every whitespace run to one space and
// drops other control characters.
func TrimAndNormalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}
