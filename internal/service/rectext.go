package service

import (
	"regexp"
	"strings"
)

var (
	bracketedRefs = regexp.MustCompile(`\[.*?\]`)
	urls          = regexp.MustCompile(`https?://\S+`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// CleanRecommendation strips bracketed citations and URLs from guideline
// recommendation text and collapses whitespace, so the report carries only
// the clinical instruction.
func CleanRecommendation(text string) string {
	t := bracketedRefs.ReplaceAllString(text, "")
	t = urls.ReplaceAllString(t, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(t, " "))
}
