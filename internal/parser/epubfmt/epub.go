// Package epubfmt implements the EPUB pipeline: validate,
// load the archive, extract Dublin Core metadata, flatten the TOC, align
// TOC hrefs to spine reading order (or fall back to one chapter per spine
// item), extract images, and normalize to the shared Document model.
package epubfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/omniparser-go/omniparser/internal/epub"
	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version = "1.0"
	wpm     = 225 // EPUB reading speed
)

var log = logging.For("epub")

// Parser implements parser.Parser for the .epub format.
type Parser struct{}

// New constructs an EPUB Parser.
func New() *Parser { return &Parser{} }

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "epub" }

// Parse runs the full EPUB pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	if err := validate(content, sourcePath); err != nil {
		return nil, err
	}

	book, err := epub.Open(content)
	if err != nil {
		return nil, errs.NewParsing("epub", err)
	}

	info := model.NewProcessingInfo("epub", version, opts.AsMap())

	metadata := epub.BuildMetadata(book.Metadata, int64(len(content)))

	fullContent, chapters, warnings := extractChapters(book, opts)
	info.Warnings = append(info.Warnings, warnings...)

	images := extractImages(book, opts, &info)

	cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
	if opts.ShouldCleanText() {
		fullContent = cleaner.Clean(fullContent)
		for i := range chapters {
			chapters[i].Content = cleaner.Clean(chapters[i].Content)
			chapters[i].WordCount = textutil.CountWords(chapters[i].Content)
		}
	}

	wordCount := textutil.CountWords(fullContent)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              fullContent,
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

func validate(content []byte, sourcePath string) error {
	if strings.ToLower(filepath.Ext(sourcePath)) != ".epub" {
		return errs.NewValidation(sourcePath, "expected .epub extension")
	}
	if len(content) == 0 {
		return errs.NewValidation(sourcePath, "file is empty")
	}
	if int64(len(content)) > 500*1024*1024 {
		log.Warn().Str("file", sourcePath).Msg("epub file exceeds 500 MiB")
	}
	return nil
}

// extractChapters runs the TOC path when a TOC is present and requested,
// else the per-spine-item fallback.
func extractChapters(book *epub.Book, opts parser.Options) (string, []model.Chapter, []string) {
	var warnings []string

	if opts.ShouldDetectChapters() && opts.UseTOCOr() {
		toc, err := book.TOC()
		if err == nil && toc != nil && !toc.Empty() {
			content, chapters, w := extractViaTOC(book, toc)
			warnings = append(warnings, w...)
			return finalizeChapters(content, chapters, opts, warnings)
		}
	}

	if !opts.ShouldDetectChapters() {
		content, _, w := concatenateSpine(book)
		return content, nil, append(warnings, w...)
	}

	if !opts.UseSpineFallbackOr() {
		return "", nil, warnings
	}

	content, chapters, w := extractViaSpine(book)
	warnings = append(warnings, w...)
	return finalizeChapters(content, chapters, opts, warnings)
}

// concatenateSpine builds the full plain-text buffer and a
// zipPath→startOffset map by walking the spine in reading order.
func concatenateSpine(book *epub.Book) (string, map[string]int, []string) {
	var sb strings.Builder
	positions := make(map[string]int)
	var warnings []string

	for _, href := range book.SpineHrefs() {
		data, err := book.ReadItem(href)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("spine item %s unreadable: %v", href, err))
			continue
		}
		text, err := processors.HTMLToPlainText(string(data))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("spine item %s failed to decode: %v", href, err))
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		positions[href] = sb.Len()
		sb.WriteString(text)
	}
	return sb.String(), positions, warnings
}

// tocResolver is satisfied by *epub.Book's TOC() return value: a flattened
// entry list plus href resolution against the navigation document's
// directory.
type tocResolver interface {
	FlatEntries() []model.TOCEntry
	ResolveHref(string) string
}

func extractViaTOC(book *epub.Book, toc tocResolver) (string, []model.Chapter, []string) {
	content, positions, warnings := concatenateSpine(book)

	entries := toc.FlatEntries()
	type span struct {
		title    string
		start    int
		level    int
		fileName string
	}
	var spans []span
	for _, e := range entries {
		zipPath := toc.ResolveHref(e.Href)
		start, ok := positions[zipPath]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("TOC entry %q: href %s not found in spine", e.Title, e.Href))
			continue
		}
		spans = append(spans, span{title: e.Title, start: start, level: e.Level, fileName: zipPath})
	}

	chapters := make([]model.Chapter, 0, len(spans))
	for i, s := range spans {
		end := len(content)
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		if end <= s.start {
			continue
		}
		chapterContent := content[s.start:end]
		chapters = append(chapters, model.Chapter{
			Title:         s.title,
			Content:       chapterContent,
			StartPosition: s.start,
			EndPosition:   end,
			WordCount:     textutil.CountWhitespaceTokens(chapterContent),
			Level:         s.level,
			Metadata: map[string]any{
				"detection_method": "toc",
				"source_item_id":   book.ItemID(s.fileName),
				"source_file_name": s.fileName,
			},
		})
	}
	return content, chapters, warnings
}

func extractViaSpine(book *epub.Book) (string, []model.Chapter, []string) {
	content, positions, warnings := concatenateSpine(book)
	hrefs := book.SpineHrefs()

	chapters := make([]model.Chapter, 0, len(hrefs))
	for i, href := range hrefs {
		data, err := book.ReadItem(href)
		if err != nil {
			continue
		}
		text, err := processors.HTMLToPlainText(string(data))
		if err != nil {
			continue
		}
		start := positions[href]
		end := len(content)
		if i+1 < len(hrefs) {
			if next, ok := positions[hrefs[i+1]]; ok {
				end = next
			}
		}
		title := firstHeading(text)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		chapters = append(chapters, model.Chapter{
			Title:         title,
			Content:       content[start:end],
			StartPosition: start,
			EndPosition:   end,
			WordCount:     textutil.CountWhitespaceTokens(content[start:end]),
			Level:         1,
			Metadata:      map[string]any{"detection_method": "spine"},
		})
	}
	return content, chapters, warnings
}

var firstLineRE = regexp.MustCompile(`^(.{1,120})`)

func firstHeading(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.SplitN(text, "\n", 2)
	m := firstLineRE.FindString(strings.TrimSpace(lines[0]))
	return strings.TrimSpace(m)
}

// finalizeChapters drops under-length chapters, disambiguates duplicate
// titles, and renumbers ids.
func finalizeChapters(content string, chapters []model.Chapter, opts parser.Options, warnings []string) (string, []model.Chapter, []string) {
	minLen := opts.MinChapterLengthOr(100)
	kept := make([]model.Chapter, 0, len(chapters))
	for _, c := range chapters {
		if c.WordCount < minLen {
			warnings = append(warnings, fmt.Sprintf("dropped chapter %q: %d words below minimum %d", c.Title, c.WordCount, minLen))
			continue
		}
		kept = append(kept, c)
	}
	model.DisambiguateTitles(kept)
	model.RenumberChapters(kept)
	return content, kept, warnings
}

// extractImages iterates manifest image items, validates with a minimum
// dimension of 1 (EPUB icons are kept), and saves under the output
// directory preserving the EPUB's internal subpath. Returns no images when
// ImageOutputDir is unset, so callers never receive dangling temp paths.
func extractImages(book *epub.Book, opts parser.Options, info *model.ProcessingInfo) []model.ImageReference {
	if !opts.ShouldExtractImages() || opts.ImageOutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(opts.ImageOutputDir, 0o755); err != nil {
		info.AddWarning(fmt.Sprintf("cannot create image output dir: %v", err))
		return nil
	}

	imgOpts := processors.ImageExtractorOptions{
		MaxSizeBytes: 50 * 1024 * 1024,
		MinDimension: 1,
		OutputDir:    opts.ImageOutputDir,
		PreserveSub:  true,
	}

	var images []model.ImageReference
	for i, item := range book.ImageItems() {
		data, err := book.ReadItem(item.ZipPath)
		if err != nil {
			info.AddWarning(fmt.Sprintf("image %s unreadable: %v", item.ZipPath, err))
			continue
		}
		absPath, format, err := processors.SaveImage(data, "img", i+1, item.SubPath, imgOpts)
		if err != nil {
			info.AddWarning(fmt.Sprintf("image %s failed validation: %v", item.ZipPath, err))
			continue
		}
		w, h, _ := processors.ProbeDimensions(data)
		images = append(images, model.ImageReference{
			ImageID:  fmt.Sprintf("img_%03d", i+1),
			Position: 0,
			FilePath: absPath,
			Width:    w,
			Height:   h,
			Format:   format,
		})
	}
	return images
}
