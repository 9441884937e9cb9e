// Package textfmt implements the plain-text pipeline:
// validate, decode with the encoding-detection cascade, match ordered
// chapter-marker patterns line by line, and normalize to the shared
// Document model.
package textfmt

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version = "1.0"
	wpm     = 200 // plain-text reading speed
)

var log = logging.For("text")

// Parser implements parser.Parser for plain-text documents.
type Parser struct{}

// New constructs a plain-text Parser.
func New() *Parser { return &Parser{} }

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "text" }

// Parse runs the full plain-text pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	if len(content) == 0 {
		return nil, errs.NewValidation(sourcePath, "file is empty")
	}

	info := model.NewProcessingInfo("text", version, opts.AsMap())

	decoded := decodeContent(content, opts)
	info.AddWarning(fmt.Sprintf("decoded using %s", decoded.Method))
	if decoded.Method != "utf8" {
		log.Warn().Str("file", sourcePath).Str("method", decoded.Method).Msg("fell back to non-utf8 decode")
	}
	text := textutil.NormalizeLineEndings(decoded.Text)

	// The word minimum applies only when explicitly requested: short
	// pattern-marked chapters are legitimate in plain text (front matter
	// pages, epigraphs), and dropping them all would discard a perfectly
	// good marker structure.
	minLen := 0
	if opts.MinChapterLength != nil {
		minLen = *opts.MinChapterLength
	}
	chapters := detectChapters(text, sourcePath, minLen)
	model.DisambiguateTitles(chapters)

	cleanedContent := text
	if opts.ShouldCleanText() {
		cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
		cleanedContent = cleaner.Clean(text)
		for i := range chapters {
			chapters[i].Content = cleaner.Clean(chapters[i].Content)
		}
	}

	metadata := model.Metadata{OriginalFormat: "text", FileSize: int64(len(content))}

	wordCount := textutil.CountWords(cleanedContent)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              cleanedContent,
		Chapters:             chapters,
		Images:               []model.ImageReference{},
		Metadata:             metadata,
		ProcessingInfo:       info,
		WordCount:            wordCount,
		EstimatedReadingTime: model.ReadingTime(wordCount, wpm),
	}
	doc.ProcessingInfo.Finish(start)
	return doc, nil
}

// decodeContent honors an explicitly forced encoding first, then the
// detection cascade when auto-detection is on, else straight UTF-8 with
// replacement of invalid sequences.
func decodeContent(content []byte, opts parser.Options) textutil.DecodeResult {
	switch strings.ToLower(opts.Encoding) {
	case "latin-1", "latin1", "iso-8859-1":
		return textutil.DecodeLatin1(content)
	case "utf-8", "utf8":
		return textutil.DecodeResult{Text: string(content), Method: "utf8"}
	}
	if opts.AutoDetectEncodingOr() {
		return textutil.DecodeCascade(content)
	}
	return textutil.DecodeResult{Text: strings.ToValidUTF8(string(content), "�"), Method: "utf8"}
}

type markerPattern struct {
	name string
	re   *regexp.Regexp
}

// orderedPatterns lists the chapter-marker patterns in precedence order;
// the first to match a line wins.
var orderedPatterns = []markerPattern{
	{"arabic_chapter", regexp.MustCompile(`(?i)^Chapter\s+(\d+)`)},
	{"worded_chapter", regexp.MustCompile(`(?i)^Chapter\s+(One|Two|Three|Four|Five|Six|Seven|Eight|Nine|Ten|Eleven|Twelve|Thirteen|Fourteen|Fifteen|Sixteen|Seventeen|Eighteen|Nineteen|Twenty)\b`)},
	{"caps_roman_chapter", regexp.MustCompile(`^CHAPTER\s+(\d+|[IVX]+)`)},
	{"part", regexp.MustCompile(`(?i)^Part\s+(\d+|[IVX]+|One|Two|Three|Four|Five)`)},
	{"section", regexp.MustCompile(`^Section\s+(\d+|[A-Z])`)},
	{"roman_numbered", regexp.MustCompile(`^([IVX]+)\.\s+[A-Z]`)},
	{"numbered_heading", regexp.MustCompile(`^(\d+)\.\s+[A-Z][a-z]+`)},
}

type marker struct {
	lineIndex int
	pattern   string
	title     string
}

// detectChapters scans lines in order, matching the first pattern that
// fires per line; with fewer than 2 markers it emits a single fallback
// chapter covering the whole text.
func detectChapters(text, sourcePath string, minLen int) []model.Chapter {
	lines := strings.Split(text, "\n")

	var markers []marker
	for i, line := range lines {
		for _, p := range orderedPatterns {
			if p.re.MatchString(line) {
				markers = append(markers, marker{lineIndex: i, pattern: p.name, title: strings.TrimSpace(line)})
				break
			}
		}
	}

	if len(markers) < 2 {
		return []model.Chapter{singleChapter(text, lines, sourcePath)}
	}

	linePositions := cumulativeLinePositions(lines)

	chapters := make([]model.Chapter, 0, len(markers))
	for i, m := range markers {
		startLine := m.lineIndex
		endLine := len(lines)
		if i+1 < len(markers) {
			endLine = markers[i+1].lineIndex
		}
		start := linePositions[startLine]
		end := linePositions[endLine]
		chapterText := text[start:end]

		wc := textutil.CountWhitespaceTokens(chapterText)
		if minLen > 0 && wc < minLen {
			continue
		}

		chapters = append(chapters, model.Chapter{
			ChapterID:     0,
			Title:         m.title,
			Content:       chapterText,
			StartPosition: start,
			EndPosition:   end,
			WordCount:     wc,
			Level:         1,
			Metadata: map[string]any{
				"detection_method": "pattern",
				"pattern_type":     m.pattern,
				"line_number":      m.lineIndex + 1,
			},
		})
	}

	if len(chapters) == 0 {
		return []model.Chapter{singleChapter(text, lines, sourcePath)}
	}

	model.RenumberChapters(chapters)
	return chapters
}

// cumulativeLinePositions returns, for each line index (including one past
// the end), the character offset at which that line begins in the
// reconstructed (newline-joined) text.
func cumulativeLinePositions(lines []string) []int {
	positions := make([]int, len(lines)+1)
	pos := 0
	for i, line := range lines {
		positions[i] = pos
		pos += len(line) + 1
	}
	positions[len(lines)] = pos - 1
	return positions
}

func singleChapter(text string, lines []string, sourcePath string) model.Chapter {
	title := firstNonEmptyLine(lines)
	if title == "" || len(title) > 100 {
		title = filenameStem(sourcePath)
	}
	return model.Chapter{
		ChapterID:     1,
		Title:         title,
		Content:       text,
		StartPosition: 0,
		EndPosition:   len(text),
		WordCount:     textutil.CountWhitespaceTokens(text),
		Level:         1,
		Metadata:      map[string]any{"detection_method": "single_chapter"},
	}
}

func firstNonEmptyLine(lines []string) string {
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}

func filenameStem(sourcePath string) string {
	name := filepath.Base(sourcePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
