// internal/matching/format.go
package matching

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultListLimit = 3

// FormatList renders facet values for display: underscores become spaces, each word is
// title-cased, and at most limit items are joined before a "+N more" suffix.
func FormatList(items []string, limit int) string {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	shown := items
	if len(items) > limit {
		shown = items[:limit]
	}

	parts := make([]string, 0, len(shown))
	for _, item := range shown {
		parts = append(parts, titleCase(item))
	}

	out := strings.Join(parts, ", ")
	if rest := len(items) - len(shown); rest > 0 {
		out += fmt.Sprintf(" +%d more", rest)
	}
	return out
}

func titleCase(v string) string {
	words := strings.Fields(strings.ReplaceAll(v, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func formatDollars(cents int64) string {
	dollars := cents / 100
	s := fmt.Sprintf("%d", dollars)
	if dollars < 0 {
		return "-" + formatDollars(-cents)
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}
