package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/parser"
)

func TestParseDocument_MarkdownHappyPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "---\ntitle: T\nauthor: A\ntags: [x, y]\n---\n\n# One\n\nhello world\n\n## One.a\n\nmore\n\n# Two\n\nend.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := ParseDocument(path, parser.Options{})
	require.NoError(t, err)

	assert.Equal(t, "T", doc.Metadata.Title)
	assert.Equal(t, "A", doc.Metadata.Author)
	assert.Equal(t, []string{"x", "y"}, doc.Metadata.Tags)

	require.Len(t, doc.Chapters, 2)
	assert.Equal(t, "One", doc.Chapters[0].Title)
	assert.Contains(t, doc.Chapters[0].Content, "One.a")
	assert.Equal(t, "Two", doc.Chapters[1].Title)
	assert.Equal(t, 1, doc.EstimatedReadingTime)
	assert.NotEmpty(t, doc.DocumentID)
	assert.GreaterOrEqual(t, doc.ProcessingInfo.ProcessingTime, 0.0)
}

func TestParseDocument_EmptyFileIsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ParseDocument(path, parser.Options{})
	var validation *errs.ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestParseDocument_DirectoryIsFileRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub.txt")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := ParseDocument(path, parser.Options{})
	var fileRead *errs.FileReadError
	require.True(t, errors.As(err, &fileRead))
}

func TestMagicBytes(t *testing.T) {
	assert.True(t, epubMagicBytes("", []byte("PK\x03\x04rest")))
	assert.False(t, epubMagicBytes("", []byte("nope")))
	assert.True(t, pdfMagicBytes("", []byte("%PDF-1.7\n")))
	assert.False(t, pdfMagicBytes("", []byte("<html>")))
}
