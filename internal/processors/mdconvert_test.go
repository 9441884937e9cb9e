package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToMarkdown_Headings(t *testing.T) {
	out, err := HTMLToMarkdown("<h1>Title</h1><p>Body.</p>", DefaultMarkdownConverterOptions())
	assert.NoError(t, err)
	assert.Contains(t, out, "# Title")
	assert.Contains(t, out, "Body.")
}

func TestHTMLToMarkdown_Table(t *testing.T) {
	html := "<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>"
	out, err := HTMLToMarkdown(html, DefaultMarkdownConverterOptions())
	assert.NoError(t, err)
	assert.Contains(t, out, "| A | B |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| 1 | 2 |")
}

func TestHTMLToMarkdown_StripsScriptAndNav(t *testing.T) {
	html := "<nav>menu</nav><script>alert(1)</script><p>content</p>"
	out, err := HTMLToMarkdown(html, DefaultMarkdownConverterOptions())
	assert.NoError(t, err)
	assert.NotContains(t, out, "menu")
	assert.NotContains(t, out, "alert")
	assert.Contains(t, out, "content")
}

func TestHTMLToMarkdown_Image(t *testing.T) {
	out, err := HTMLToMarkdown(`<img src="a.png" alt="Alt">`, DefaultMarkdownConverterOptions())
	assert.NoError(t, err)
	assert.Contains(t, out, "![Alt](a.png)")
}
