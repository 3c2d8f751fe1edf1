// ABOUTME: Input sanitization for free-text names.
// ABOUTME: Strips markup, links and quote characters, then truncates.
package setlog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	urlPattern   = regexp.MustCompile(`(?i)(https?://|www\.)\S*`)
	charsPattern = regexp.MustCompile("[<>\"'`]")
	spacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize cleans raw user text and truncates it to max runes. A max of 0
// or less disables truncation.
func Sanitize(raw string, max int) string {
	s := strings.TrimSpace(raw)
	s = tagPattern.ReplaceAllString(s, "")
	s = urlPattern.ReplaceAllString(s, "")
	s = charsPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if max > 0 && utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}

// SanitizeName cleans an exercise name.
func SanitizeName(raw string) string {
	return Sanitize(raw, maxNameLen)
}
