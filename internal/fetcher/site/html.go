package site

import (
	"html"
	"regexp"
	"strings"
)

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	ogDescRe   = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:description["'][^>]*content=["']([^"']*)["']`)
	ogSiteRe   = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:site_name["'][^>]*content=["']([^"']*)["']`)

	scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?</style>`)
	// Closing block-level tags and line breaks become newlines so the
	// line-oriented extractors still see document structure.
	blockRe = regexp.MustCompile(`(?i)<br[^>]*>|</(?:p|div|li|tr|h[1-6]|section|article|ul|ol|table)>`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)

	spaceRe     = regexp.MustCompile(`[ \t\r\f]+`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
)

func pageTitle(doc string) string {
	m := titleRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return html.UnescapeString(strings.TrimSpace(m[1]))
}

func metaDescription(doc string) string {
	if m := metaDescRe.FindStringSubmatch(doc); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}
	if m := ogDescRe.FindStringSubmatch(doc); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}
	return ""
}

func ogSiteName(doc string) string {
	m := ogSiteRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return html.UnescapeString(strings.TrimSpace(m[1]))
}

// pageText strips script and style blocks, turns block boundaries into
// newlines, drops the remaining tags, and tidies whitespace. Conversion
// quality is intentionally rough; the extraction engine works on keyword and
// pattern signals, not layout.
func pageText(doc string) string {
	text := scriptRe.ReplaceAllString(doc, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = blockRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = spaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
