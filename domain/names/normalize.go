package names

import (
	"strings"
	"unicode"
)

// Normalize uppercases s and keeps only letters, collapsing whitespace runs to
// one space. Digits and punctuation are dropped.
func Normalize(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToUpper(s) {
		switch {
		case unicode.IsLetter(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

func compact(s string) string { return strings.ReplaceAll(s, " ", "") }

// IsTruncated reports whether recognized text ends in an ellipsis or period,
// which the game uses when a name does not fit its box.
func IsTruncated(s string) bool {
	t := strings.TrimSpace(s)
	return strings.Contains(t, "...") || strings.Contains(t, "…") || strings.HasSuffix(t, ".")
}

// Clean trims recognized text to something presentable when no dictionary
// entry could be matched.
func Clean(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".…")
	return strings.Join(strings.Fields(s), " ")
}
