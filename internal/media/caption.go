package media

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CaptionLineLimit is the maximum caption line width in characters.
const CaptionLineLimit = 25

var (
	quoteChars     = regexp.MustCompile(`['"‘’“”]`)
	disallowed     = regexp.MustCompile(`[^a-zA-Z0-9\s.,!?'-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeCaption strips quotes and anything outside the caption alphabet,
// then collapses whitespace. Accented letters are folded to their base form
// first so "café" survives as "cafe".
func SanitizeCaption(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	folded = quoteChars.ReplaceAllString(folded, "")
	folded = disallowed.ReplaceAllString(folded, "")
	folded = whitespaceRuns.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// WrapCaption greedily packs words into lines of at most limit characters.
// Words are never split; a word longer than limit gets its own line.
func WrapCaption(text string, limit int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len(candidate) > limit && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// escapeDrawtext escapes a value for use inside a single-quoted drawtext
// option.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "'", `'\\\''`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return s
}

// escapeFilterPath escapes a file path for a filter option value.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.ReplaceAll(p, ":", `\:`)
	p = strings.ReplaceAll(p, "'", `\'`)
	return p
}
