package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	blockBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|li|h[1-6]|blockquote|tr)>`)
	spaceRunRe   = regexp.MustCompile(`[ \t\r\f]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// CleanText converts possibly-HTML text into clean plain text: tags are
// stripped, entities decoded, runs of whitespace collapsed, and consecutive
// blank lines capped at one. Plain input passes through with the same
// whitespace normalization, so the output never contains raw markup
// regardless of which fetcher produced it.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		// Preserve block boundaries as newlines before stripping tags.
		withBreaks := blockBreakRe.ReplaceAllString(s, "\n")
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(withBreaks)); err == nil {
			s = doc.Text()
		}
	}
	return CollapseWhitespace(s)
}

// CollapseWhitespace squeezes runs of spaces and tabs, trims each line, and
// caps consecutive blank lines at one.
func CollapseWhitespace(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
