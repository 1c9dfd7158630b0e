package app

import (
	"strings"
	"unicode/utf8"
)

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses whitespace and masks quoted literals so
// inlined values never land in span attributes. Long statements are cut at a
// rune boundary.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if normalized == "" {
		return normalized
	}
	normalized = maskStringLiterals(normalized)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(normalized[cut]) {
		cut--
	}
	return normalized[:cut] + "..."
}

func maskStringLiterals(query string) string {
	if !strings.Contains(query, "'") {
		return query
	}

	var out strings.Builder
	out.Grow(len(query))
	inLiteral := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch != '\'' {
			if !inLiteral {
				out.WriteByte(ch)
			}
			continue
		}
		if inLiteral && i+1 < len(query) && query[i+1] == '\'' {
			i++
			continue
		}
		if !inLiteral {
			out.WriteString("'?'")
		}
		inLiteral = !inLiteral
	}
	return out.String()
}
