package textfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniparser-go/omniparser/internal/parser"
)

func TestParse_EmptyFileRejected(t *testing.T) {
	_, err := New().Parse(nil, "empty.txt", parser.Options{})
	require.Error(t, err)
}

func TestParse_ArabicChapterMarkers(t *testing.T) {
	text := "Chapter 1\nhello there friend\n\nChapter 2\nmore words follow here\n"
	minLen := 1
	doc, err := New().Parse([]byte(text), "book.txt", parser.Options{MinChapterLength: &minLen})
	require.NoError(t, err)
	require.Len(t, doc.Chapters, 2)
	assert.Equal(t, "Chapter 1", doc.Chapters[0].Title)
	assert.Equal(t, "Chapter 2", doc.Chapters[1].Title)
	assert.Equal(t, 1, doc.Chapters[0].ChapterID)
	assert.Equal(t, 2, doc.Chapters[1].ChapterID)
}

func TestParse_ShortPatternChaptersKeptByDefault(t *testing.T) {
	text := "Chapter 1\n\na b c d e\n\nChapter 2\n\nf g h\n"
	doc, err := New().Parse([]byte(text), "book.txt", parser.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Chapters, 2)
	assert.Equal(t, "pattern", doc.Chapters[0].Metadata["detection_method"])
	assert.Equal(t, "Chapter 1", doc.Chapters[0].Title)
	assert.Equal(t, "Chapter 2", doc.Chapters[1].Title)
	assert.Equal(t, 1, doc.EstimatedReadingTime)
}

func TestParse_SingleChapterFallback(t *testing.T) {
	text := "Just a short note with no markers at all.\n"
	doc, err := New().Parse([]byte(text), "note.txt", parser.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Chapters, 1)
	assert.Equal(t, "single_chapter", doc.Chapters[0].Metadata["detection_method"])
}

func TestParse_DuplicateTitlesDisambiguated(t *testing.T) {
	text := "Chapter 1\ntext one here indeed\n\nChapter 1\ntext two here indeed\n"
	minLen := 1
	doc, err := New().Parse([]byte(text), "book.txt", parser.Options{MinChapterLength: &minLen})
	require.NoError(t, err)
	require.Len(t, doc.Chapters, 2)
	assert.Equal(t, "Chapter 1", doc.Chapters[0].Title)
	assert.Equal(t, "Chapter 1 (2)", doc.Chapters[1].Title)
}

func TestCumulativeLinePositions_MatchesTextLength(t *testing.T) {
	lines := []string{"abc", "de", "fghi"}
	text := "abc\nde\nfghi"
	positions := cumulativeLinePositions(lines)
	require.Equal(t, len(lines)+1, len(positions))
	assert.Equal(t, len(text), positions[len(lines)])
	assert.Equal(t, 0, positions[0])
	assert.Equal(t, 4, positions[1])
	assert.Equal(t, 7, positions[2])
}

func TestFilenameStem(t *testing.T) {
	assert.Equal(t, "report", filenameStem("/tmp/report.txt"))
}
