package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head>
<title> Acme Corp &amp; Sons </title>
<meta name="description" content="We build rockets &amp; rovers">
<meta property="og:site_name" content="Acme Corp">
<style>body { color: red; }</style>
<script>var tracking = "ignore me";</script>
</head>
<body>
<h1>Welcome to Acme</h1>
<p>We build rockets.</p>
<ul><li>Web development services</li><li>Cloud consulting</li></ul>
</body>
</html>`

func TestPageTitle(t *testing.T) {
	require.Equal(t, "Acme Corp & Sons", pageTitle(sampleDoc))
	require.Equal(t, "", pageTitle("<html><body>no title</body></html>"))
}

func TestMetaDescription(t *testing.T) {
	require.Equal(t, "We build rockets & rovers", metaDescription(sampleDoc))

	ogOnly := `<meta property="og:description" content="fallback text">`
	require.Equal(t, "fallback text", metaDescription(ogOnly))

	require.Equal(t, "", metaDescription("<html></html>"))
}

func TestOGSiteName(t *testing.T) {
	require.Equal(t, "Acme Corp", ogSiteName(sampleDoc))
	require.Equal(t, "", ogSiteName("<html></html>"))
}

func TestPageText(t *testing.T) {
	text := pageText(sampleDoc)

	require.NotContains(t, text, "ignore me")
	require.NotContains(t, text, "color: red")
	require.NotContains(t, text, "<")

	// Block elements keep their own lines so line-oriented extraction works.
	lines := strings.Split(text, "\n")
	require.Contains(t, lines, "Welcome to Acme")
	require.Contains(t, lines, "We build rockets.")
	require.Contains(t, lines, "Web development services")
	require.Contains(t, lines, "Cloud consulting")
}

func TestPageTextCollapsesWhitespace(t *testing.T) {
	doc := "<p>a    b</p>\n\n\n\n<p>c</p>"
	require.Equal(t, "a b\n\nc", pageText(doc))
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "héllo", truncateRunes("héllo", 10))
	require.Equal(t, "hé", truncateRunes("héllo", 2))
}
