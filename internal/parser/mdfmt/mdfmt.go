// Package mdfmt implements the Markdown pipeline:
// validate, read with encoding fallback, extract frontmatter, map metadata
// fields, normalize heading/list syntax, detect chapters via the shared
// detector, and extract image references.
package mdfmt

import (
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
	wpm     = 200
)

var log = logging.For("markdown")

// Parser implements parser.Parser for Markdown documents.
type Parser struct{}

// New constructs a Markdown Parser.
func New() *Parser { return &Parser{} }

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "markdown" }

// Parse runs the full Markdown pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	if len(content) == 0 {
		return nil, errs.NewValidation(sourcePath, "file is empty")
	}

	info := model.NewProcessingInfo("markdown", version, opts.AsMap())

	decoded := textutil.DecodeCascade(content)
	if decoded.Method != "utf8" {
		info.AddWarning("file is not valid UTF-8; decoded as latin-1")
	}
	text := textutil.NormalizeLineEndings(decoded.Text)

	var fm map[string]any
	if opts.ExtractFrontmatterOr() {
		var body string
		fm, body, info.Warnings = extractFrontmatter(text, info.Warnings)
		text = body
	}

	metadata := model.Metadata{OriginalFormat: "markdown", FileSize: int64(len(content))}
	info.Warnings = applyMetadataFields(&metadata, fm, info.Warnings)

	if opts.NormalizeHeadingsOr() {
		text = normalizeSetextHeadings(text)
		text = normalizeListMarkers(text)
	}
	text = collapseBlankLines(text)

	cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
	if opts.ShouldCleanText() {
		text = cleaner.Clean(text)
	}

	var chapters []model.Chapter
	if opts.ShouldDetectChapters() {
		minLevel, maxLevel := opts.ChapterLevelBand()
		chapters = processors.DetectChapters(text, minLevel, maxLevel)
		model.DisambiguateTitles(chapters)
	} else {
		chapters = []model.Chapter{}
	}

	images := extractImageReferences(text, sourcePath)

	wordCount := textutil.CountWords(text)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              text,
		Chapters:             chapters,
		Images:               images,
		Metadata:             metadata,
		ProcessingInfo:       info,
		WordCount:            wordCount,
		EstimatedReadingTime: model.ReadingTime(wordCount, wpm),
	}
	doc.ProcessingInfo.Finish(start)
	return doc, nil
}

func collapseBlankLines(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}

var knownTypoFields = map[string]string{
	"titel": "title",
	"autor": "author",
}
