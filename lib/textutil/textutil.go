package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`[\s\x{00a0}]+`)

// NormalizeName produces a comparison key for a name: lower cased with
// all whitespace and punctuation removed.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '"', '\'', '-':
			return -1
		}
		return r
	}, name)
	return name
}

// CollapseWhitespace trims s and replaces every whitespace run (non-breaking
// spaces included) with a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = CollapseWhitespace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// After returns the trimmed text following prefix, and whether the prefix
// was present.
func After(s, prefix string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

// Title upper-cases the first letter of every space separated word and
// lower-cases the rest, roster CSVs are often all caps.
func Title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
