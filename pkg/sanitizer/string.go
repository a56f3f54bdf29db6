package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses every whitespace run to a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeSample(sample string) string {
	return TrimAndNormalize(sample)
}

func NormalizeGas(gas string) string {
	return TrimAndNormalize(gas)
}

// NormalizeNotes keeps line structure, strips trailing whitespace from each
// line and trims whitespace around the whole text. Indentation of inner lines
// is kept.
func NormalizeNotes(notes string) string {
	lines := strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
