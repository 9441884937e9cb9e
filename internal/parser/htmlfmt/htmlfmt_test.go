package htmlfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, isHTTPURL("http://example.com/a"))
	assert.True(t, isHTTPURL("https://example.com/a"))
	assert.False(t, isHTTPURL("/local/path.html"))
	assert.False(t, isHTTPURL("relative.html"))
}

func TestExtractMainContent_PrefersArticleOverNav(t *testing.T) {
	html := `<html><body>
		<nav><a href="/">home</a><a href="/about">about</a></nav>
		<article><p>This is the real article body with plenty of words to win scoring over the navigation links that surround it.</p></article>
	</body></html>`
	main, usedFallback, err := extractMainContent(html)
	require.NoError(t, err)
	assert.False(t, usedFallback)
	assert.Contains(t, main, "real article body")
	assert.NotContains(t, main, "about")
}

func TestExtractMainContent_FallsBackWhenNoCandidateIsBigEnough(t *testing.T) {
	html := `<html><body><p>hi</p></body></html>`
	_, usedFallback, err := extractMainContent(html)
	require.Error(t, err)
	assert.True(t, usedFallback)
}

func TestCollectImgSrcs(t *testing.T) {
	html := `<html><body><img src="a.png"><p><img src="b.jpg"></p></body></html>`
	srcs := collectImgSrcs(html)
	assert.Equal(t, []string{"a.png", "b.jpg"}, srcs)
}

func TestResolveImageURL(t *testing.T) {
	assert.Equal(t, "https://example.com/img.png", resolveImageURL("https://example.com/page", "//example.com/img.png"))
	assert.Equal(t, "https://example.com/img.png", resolveImageURL("https://example.com/page/x", "/img.png"))
	assert.Equal(t, "https://other.test/img.png", resolveImageURL("https://example.com/page", "https://other.test/img.png"))
	assert.Equal(t, "", resolveImageURL("https://example.com/page", "data:image/png;base64,xxx"))
}
