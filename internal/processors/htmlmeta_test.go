package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHTMLMetadata_ScenarioThree(t *testing.T) {
	source := `<html lang="en"><head><meta property="og:title" content="OG">` +
		`<meta property="og:article:tag" content="a"><meta property="og:article:tag" content="b">` +
		`<title>Title</title></head><body><h1>H</h1><p>Body.</p></body></html>`

	meta, err := ExtractHTMLMetadata(source, "")
	require.NoError(t, err)
	assert.Equal(t, "OG", meta.Title)
	assert.Equal(t, []string{"a", "b"}, meta.Tags)
	assert.Equal(t, "en", meta.Language)
	assert.Equal(t, "html", meta.OriginalFormat)
}

func TestExtractHTMLMetadata_DCFallback(t *testing.T) {
	source := `<html><head><meta name="DC.title" content="DC Title"><meta name="DC.publisher" content="Pub"></head><body></body></html>`
	meta, err := ExtractHTMLMetadata(source, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "DC Title", meta.Title)
	assert.Equal(t, "Pub", meta.Publisher)
	assert.Equal(t, "https://example.com/a", meta.CustomFields["url"])
}
