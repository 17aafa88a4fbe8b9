// Package analysis implements the message analysis and statistics pipeline.
package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// normalize lower-cases text and composes it to NFC so that precomposed and
// decomposed accents compare equal.
func normalize(text string) string {
	if text == "" {
		return ""
	}
	// cases.Caser is stateful; one per call.
	return cases.Lower(language.Und).String(norm.NFC.String(text))
}

// Tokenize lower-cases text and splits it into word tokens, dropping punctuation.
// The number of tokens is the message's word count.
func Tokenize(text string) []string {
	normalized := normalize(text)
	if strings.TrimSpace(normalized) == "" {
		return []string{}
	}
	tokens := wordPattern.FindAllString(normalized, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := normalize(strings.TrimSpace(t)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
