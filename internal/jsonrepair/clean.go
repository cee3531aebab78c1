// Package jsonrepair turns raw model text into a parsed JSON value,
// repairing the common ways LLM output misses being valid JSON.
package jsonrepair

import (
	"regexp"
	"strings"
)

const bom = "\ufeff"

// controlChars matches ASCII control characters other than tab, LF and CR.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// Clean strips surrounding whitespace, a leading byte-order mark and a
// single pair of markdown code fences.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, bom)

	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// FixString drops stray control characters and re-escapes raw newlines that
// fall inside string literals. String state is tracked per line by counting
// quotes that are not preceded by a backslash; a line that continues an open
// string is joined to the previous one with a literal "\n" escape.
func FixString(s string) string {
	s = controlChars.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	var b strings.Builder
	b.Grow(len(s) + len(lines))

	inString := false
	for i, line := range lines {
		odd := unescapedQuotes(line)%2 == 1

		switch {
		case inString:
			b.WriteString(`\n`)
			b.WriteString(line)
			if odd {
				inString = false
			}
		default:
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
			if odd {
				inString = true
			}
		}
	}
	return b.String()
}

func unescapedQuotes(line string) int {
	n := 0
	for j := 0; j < len(line); j++ {
		if line[j] == '"' && (j == 0 || line[j-1] != '\\') {
			n++
		}
	}
	return n
}
