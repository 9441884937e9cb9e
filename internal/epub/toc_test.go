package epub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navFixture = `<?xml version="1.0"?>
<html xmlns:epub="http://www.idpf.org/2007/ops">
<body>
<nav epub:type="toc">
<ol>
<li><a href="intro.xhtml">Introduction</a></li>
<li><a href="part1.xhtml">Part One</a>
  <ol>
    <li><a href="ch1.xhtml">Chapter 1</a></li>
    <li><a href="ch2.xhtml#s1">Chapter 2</a></li>
  </ol>
</li>
</ol>
</nav>
</body>
</html>`

func TestParseNavTOC_NestedLevels(t *testing.T) {
	toc := parseNavTOC(navFixture)
	require.False(t, toc.Empty())
	require.Len(t, toc.Entries, 2)

	assert.Equal(t, "Introduction", toc.Entries[0].Title)
	assert.Equal(t, 1, toc.Entries[0].Level)

	part := toc.Entries[1]
	require.Len(t, part.Children, 2)
	assert.Equal(t, "Chapter 1", part.Children[0].Title)
	assert.Equal(t, 2, part.Children[0].Level)
}

func TestParseNavTOC_FlattensDepthFirst(t *testing.T) {
	toc := parseNavTOC(navFixture)
	flat := toc.FlatEntries()
	require.Len(t, flat, 4)
	assert.Equal(t, "Introduction", flat[0].Title)
	assert.Equal(t, "Part One", flat[1].Title)
	assert.Equal(t, "Chapter 1", flat[2].Title)
	assert.Equal(t, "Chapter 2", flat[3].Title)
}

func TestParseNavTOC_EmptyOnGarbage(t *testing.T) {
	assert.True(t, parseNavTOC("<html><body><p>no nav</p></body></html>").Empty())
}

const ncxFixture = `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/">
  <navMap>
    <navPoint id="n1">
      <navLabel><text>First</text></navLabel>
      <content src="first.xhtml"/>
      <navPoint id="n1a">
        <navLabel><text>Nested</text></navLabel>
        <content src="first.xhtml#a"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`

func TestParseNCXTOC(t *testing.T) {
	toc := parseNCXTOC([]byte(ncxFixture))
	require.Len(t, toc.Entries, 1)
	assert.Equal(t, "First", toc.Entries[0].Title)
	require.Len(t, toc.Entries[0].Children, 1)
	assert.Equal(t, "Nested", toc.Entries[0].Children[0].Title)
	assert.Equal(t, 2, toc.Entries[0].Children[0].Level)
}

func TestResolveHref_DropsFragmentsAndJoins(t *testing.T) {
	assert.Equal(t, "OEBPS/ch2.xhtml", resolveHref("OEBPS", "ch2.xhtml#s1"))
	assert.Equal(t, "ch1.xhtml", resolveHref("", "ch1.xhtml"))
	assert.Equal(t, "text/ch1.xhtml", resolveHref("OEBPS", "../text/ch1.xhtml"))
}
