package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Title</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>
      <w:r><w:t> plain</w:t></w:r>
    </w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
    <w:p>
      <w:hyperlink r:id="rId7" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
        <w:r><w:t>a link</w:t></w:r>
      </w:hyperlink>
    </w:p>
    <w:p>
      <w:r><w:t>see </w:t></w:r>
      <w:hyperlink r:id="rId7" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
        <w:r><w:t>the docs</w:t></w:r>
      </w:hyperlink>
      <w:r><w:t> for details</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

const coreXMLDoc = `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Doc Title</dc:title>
  <dc:creator>Author Name</dc:creator>
  <cp:keywords>alpha; beta</cp:keywords>
  <cp:lastModifiedBy>Editor</cp:lastModifiedBy>
  <dcterms:created>2023-05-01T10:00:00Z</dcterms:created>
  <dcterms:modified>2023-06-01T10:00:00Z</dcterms:modified>
</cp:coreProperties>`

const relsXML = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId7" Type="hyperlink" Target="https://example.com/link"/>
  <Relationship Id="rId8" Type="image" Target="media/image1.png"/>
</Relationships>`

const stylesXMLDoc = `<?xml version="1.0"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:styleId="Heading1"><w:name w:val="Heading 1"/></w:style>
</w:styles>`

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	write("word/document.xml", documentXML)
	write("docProps/core.xml", coreXMLDoc)
	write("word/_rels/document.xml.rels", relsXML)
	write("word/styles.xml", stylesXMLDoc)
	write("word/media/image1.png", "fake image bytes")
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestOpen_BodyPreservesDocumentOrder(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	require.Len(t, doc.Body.Elements, 5)
	assert.NotNil(t, doc.Body.Elements[0].Paragraph)
	assert.NotNil(t, doc.Body.Elements[1].Paragraph)
	assert.NotNil(t, doc.Body.Elements[2].Table)
	assert.NotNil(t, doc.Body.Elements[3].Paragraph)
	assert.NotNil(t, doc.Body.Elements[4].Paragraph)

	heading := doc.Body.Elements[0].Paragraph
	assert.Equal(t, "Heading1", heading.StyleName)
	require.Len(t, heading.Runs, 1)
	assert.Equal(t, "Title", heading.Runs[0].Text)

	body := doc.Body.Elements[1].Paragraph
	require.Len(t, body.Runs, 2)
	assert.True(t, body.Runs[0].Bold)
	assert.Equal(t, "bold", body.Runs[0].Text)
	assert.False(t, body.Runs[1].Bold)
}

func TestOpen_TableCells(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	tbl := doc.Body.Elements[2].Table
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"A", "B"}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[1])
}

func TestOpen_HyperlinkRunsCarryRelID(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	link := doc.Body.Elements[3].Paragraph
	require.Len(t, link.Runs, 1)
	assert.True(t, link.Runs[0].Hyperlink)
	assert.Equal(t, "rId7", link.Runs[0].RelID)
	assert.Equal(t, "a link", link.Runs[0].Text)
}

func TestOpen_InlineHyperlinkKeepsRunOrder(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	mixed := doc.Body.Elements[4].Paragraph
	require.Len(t, mixed.Runs, 3)
	assert.Equal(t, "see ", mixed.Runs[0].Text)
	assert.False(t, mixed.Runs[0].Hyperlink)
	assert.Equal(t, "the docs", mixed.Runs[1].Text)
	assert.True(t, mixed.Runs[1].Hyperlink)
	assert.Equal(t, "rId7", mixed.Runs[1].RelID)
	assert.Equal(t, " for details", mixed.Runs[2].Text)
	assert.False(t, mixed.Runs[2].Hyperlink)
}

func TestOpen_CorePropertiesAndStyles(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	assert.Equal(t, "Doc Title", doc.CoreProps.Title)
	assert.Equal(t, "Author Name", doc.CoreProps.Creator)
	assert.Equal(t, "alpha; beta", doc.CoreProps.Keywords)
	assert.Equal(t, "Editor", doc.CoreProps.LastModifiedBy)
	require.NotNil(t, doc.CoreProps.Created)
	assert.Equal(t, "Heading 1", doc.Styles["Heading1"])
}

func TestImageRelationshipsAndReadMedia(t *testing.T) {
	doc, err := Open(buildDOCX(t))
	require.NoError(t, err)

	rels := doc.ImageRelationships()
	require.Contains(t, rels, "rId8")

	data, err := doc.ReadMedia(rels["rId8"])
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}
