// Package pdffmt implements the PDF pipeline: decide
// text-layer vs OCR path by sampled character density, extract text spans
// with font metadata, detect headings by font statistics, extract tables
// and images, optionally scan for QR codes, and normalize to the shared
// Document model.
package pdffmt

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/ocr"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/qr"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version            = "1.0"
	wpm                = 200
	scanThresholdChars = 100 // per-page average below this => scanned document
	headingWeight      = 1.5 // heading threshold is mean + 1.5*stdev
	maxHeadingWords    = 25
	headingWindow      = 100
)

var log = logging.For("pdf")

// Parser implements parser.Parser for the .pdf format.
type Parser struct {
	OCR     ocr.Engine
	QR      qr.Scanner
	Fetcher qr.Fetcher
}

// New constructs a PDF Parser. OCR defaults to a real pdftoppm+tesseract
// CommandEngine bound to each Parse call's source path (set in ocrEngine);
// QR scanning/fetching default to no-ops. Callers wanting a different OCR
// engine (e.g. a cloud OCR API) or real QR decoding set the struct fields.
func New() *Parser {
	return &Parser{QR: qr.NoOp{}, Fetcher: qr.NoOpFetcher{}}
}

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "pdf" }

// span is one text run with its font metadata and document-relative
// character offset.
type span struct {
	text     string
	fontSize float64
	bold     bool
	page     int
	position int
	x, y     float64
}

// Parse runs the full PDF pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	if err := validate(content, sourcePath); err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errs.NewParsing("pdf", err)
	}

	info := model.NewProcessingInfo("pdf", version, opts.AsMap())

	numPages := r.NumPage()
	if max := opts.MaxPages; max != nil && *max > 0 && *max < numPages {
		numPages = *max
	}

	scanned := isScanned(r, numPages)

	var spans []span
	var markdown string

	if scanned && opts.UseOCROr() {
		var ocrErr error
		markdown, info.Warnings, ocrErr = runOCR(numPages, opts, p.ocrEngine(sourcePath), info.Warnings)
		if ocrErr != nil {
			return nil, errs.NewParsing("pdf", ocrErr)
		}
	} else {
		spans = extractSpans(r, numPages)
		markdown = injectHeadings(spans)
	}

	minLevel, maxLevel := 1, 3
	if opts.MinChapterLevel != nil || opts.MaxChapterLevel != nil {
		minLevel, maxLevel = opts.ChapterLevelBand()
	}

	var chapters []model.Chapter
	if opts.ShouldDetectChapters() {
		chapters = processors.DetectChapters(markdown, minLevel, maxLevel)
		model.DisambiguateTitles(chapters)
	}

	if opts.ExtractTablesOr() {
		tables := extractTables(spans)
		if len(tables) > 0 {
			markdown += "\n\n## Extracted Tables\n\n" + strings.Join(tables, "\n\n")
		}
	}

	var images []model.ImageReference
	if opts.ShouldExtractImages() && opts.ImageOutputDir != "" {
		images, info.Warnings = extractImages(sourcePath, opts, info.Warnings)
	}

	metadata := model.Metadata{OriginalFormat: "pdf", FileSize: int64(len(content))}
	cf := metadata.EnsureCustomFields()
	cf["page_count"] = numPages

	if opts.DetectQROr() {
		refs := scanQR(p.qrScanner(), r, numPages)
		appendix, summary := qr.Merge(refs, p.qrFetcher())
		if appendix != "" {
			markdown += appendix
			cf["qr_codes"] = summary
		}
	}

	cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
	if opts.ShouldCleanText() {
		markdown = cleaner.Clean(markdown)
		for i := range chapters {
			chapters[i].Content = cleaner.Clean(chapters[i].Content)
			chapters[i].WordCount = textutil.CountWords(chapters[i].Content)
		}
	}

	wordCount := textutil.CountWords(markdown)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              markdown,
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
	if strings.ToLower(filepath.Ext(sourcePath)) != ".pdf" {
		return errs.NewValidation(sourcePath, "expected .pdf extension")
	}
	if len(content) == 0 {
		return errs.NewValidation(sourcePath, "file is empty")
	}
	return nil
}

// isScanned samples up to the first three pages and treats an average
// stripped-character count below scanThresholdChars as a scanned document.
func isScanned(r *pdf.Reader, numPages int) bool {
	sample := numPages
	if sample > 3 {
		sample = 3
	}
	if sample == 0 {
		return true
	}
	total := 0
	for i := 1; i <= sample; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, t := range page.Content().Text {
			total += len(strings.TrimSpace(t.S))
		}
	}
	avg := float64(total) / float64(sample)
	return avg < scanThresholdChars
}

var boldNameRE = regexp.MustCompile(`(?i)bold`)

// extractSpans walks pages→content spans, collecting font metadata and a
// running character offset into the concatenated output.
func extractSpans(r *pdf.Reader, numPages int) []span {
	var spans []span
	offset := 0
	lastPage := 0
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			if lastPage != 0 && i != lastPage {
				offset += len(fmt.Sprintf("\n\n--- Page %d ---\n\n", i))
			}
			lastPage = i
			spans = append(spans, span{
				text:     t.S,
				fontSize: t.FontSize,
				bold:     boldNameRE.MatchString(t.Font),
				page:     i,
				position: offset,
				x:        t.X,
				y:        t.Y,
			})
			offset += len(t.S) + 1 // span text plus the joining space
		}
	}
	return spans
}

// headingCandidates computes (mean, stdev, threshold) over span font sizes
// and returns spans that clear the font-statistics threshold.
func headingCandidates(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	mean, stddev := fontStats(spans)
	threshold := mean + headingWeight*stddev

	log.Debug().Float64("mean", mean).Float64("stddev", stddev).Float64("threshold", threshold).Msg("computed PDF heading font statistics")

	var out []span
	for _, s := range spans {
		words := len(strings.Fields(s.text))
		if words < 1 || words > maxHeadingWords {
			continue
		}
		if s.fontSize >= threshold || (s.bold && s.fontSize > mean) {
			out = append(out, s)
		}
	}
	return out
}

func fontStats(spans []span) (mean, stddev float64) {
	sum := 0.0
	for _, s := range spans {
		sum += s.fontSize
	}
	mean = sum / float64(len(spans))

	variance := 0.0
	for _, s := range spans {
		d := s.fontSize - mean
		variance += d * d
	}
	variance /= float64(len(spans))
	stddev = math.Sqrt(variance)
	return mean, stddev
}

// headingLevel maps a span's font size to a 1..6 heading level by its rank
// among the descending list of unique font sizes present in the document.
func headingLevel(size float64, sizeRank map[float64]int) int {
	if rank, ok := sizeRank[size]; ok {
		level := rank + 1
		if level > 6 {
			level = 6
		}
		return level
	}
	return 3
}

func buildSizeRank(spans []span) map[float64]int {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, s := range spans {
		if !seen[s.fontSize] {
			seen[s.fontSize] = true
			sizes = append(sizes, s.fontSize)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	rank := make(map[float64]int, len(sizes))
	for i, sz := range sizes {
		rank[sz] = i
	}
	return rank
}

// injectHeadings builds the concatenated plain text and injects Markdown
// ATX heading markers at each heading candidate's position, processing in
// descending position order so earlier offsets are unaffected by later
// insertions.
func injectHeadings(spans []span) string {
	if len(spans) == 0 {
		return ""
	}

	var sb strings.Builder
	lastPage := spans[0].page
	for _, s := range spans {
		if s.page != lastPage {
			sb.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", s.page))
			lastPage = s.page
		}
		sb.WriteString(s.text)
		sb.WriteString(" ")
	}
	text := sb.String()

	candidates := headingCandidates(spans)
	rank := buildSizeRank(spans)

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].position > candidates[j].position })

	for _, c := range candidates {
		level := headingLevel(c.fontSize, rank)
		marker := "\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(c.text) + "\n"
		text = injectAt(text, c.position, c.text, marker)
	}

	return text
}

// injectAt replaces the heading text within a small window around pos, or
// falls back to the first substring match.
func injectAt(text string, pos int, needle, replacement string) string {
	lo := pos - headingWindow
	if lo < 0 {
		lo = 0
	}
	hi := pos + headingWindow
	if hi > len(text) {
		hi = len(text)
	}
	if lo >= len(text) {
		return text
	}
	window := text[lo:hi]
	if idx := strings.Index(window, needle); idx >= 0 {
		abs := lo + idx
		return text[:abs] + replacement + text[abs+len(needle):]
	}
	if idx := strings.Index(text, needle); idx >= 0 {
		return text[:idx] + replacement + text[idx+len(needle):]
	}
	return text
}

// runOCR recognizes text for each page via engine, wrapped in a wall-clock
// timeout. Page rasterization is the engine's
// responsibility: the core passes nil image bytes and the default
// ocr.CommandEngine rasterizes the page itself (via pdftoppm) from the
// source path it was constructed with; an injected engine may do the same
// or accept pre-rendered bytes instead. OCR output carries no font
// metadata, so no headings are derivable from it.
func runOCR(numPages int, opts parser.Options, engine ocr.Engine, warnings []string) (string, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.OCRTimeoutSOr())*time.Second)
	defer cancel()

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return "", warnings, fmt.Errorf("OCR timed out after %ds at page %d", opts.OCRTimeoutSOr(), i)
		default:
		}
		res, err := engine.Recognize(ctx, nil, i, opts.OCRLanguageOr(), opts.OCRDPIOr())
		if err != nil {
			if ctx.Err() != nil {
				return "", warnings, fmt.Errorf("OCR timed out after %ds at page %d", opts.OCRTimeoutSOr(), i)
			}
			warnings = append(warnings, fmt.Sprintf("OCR failed on page %d: %v", i, err))
			continue
		}
		sb.WriteString(res.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), warnings, nil
}

func scanQR(scanner qr.Scanner, r *pdf.Reader, numPages int) []model.QRCodeReference {
	var refs []model.QRCodeReference
	for i := 1; i <= numPages; i++ {
		found, err := scanner.Scan(nil, i)
		if err != nil {
			continue
		}
		refs = append(refs, found...)
	}
	return refs
}

// ocrEngine returns the injected OCR engine, or the default
// pdftoppm+tesseract CommandEngine bound to sourcePath when none was
// injected, so scanned documents are never silently skipped.
func (p *Parser) ocrEngine(sourcePath string) ocr.Engine {
	if p.OCR != nil {
		return p.OCR
	}
	return ocr.NewCommandEngine(sourcePath)
}

func (p *Parser) qrScanner() qr.Scanner {
	if p.QR != nil {
		return p.QR
	}
	return qr.NoOp{}
}

func (p *Parser) qrFetcher() qr.Fetcher {
	if p.Fetcher != nil {
		return p.Fetcher
	}
	return qr.NoOpFetcher{}
}
