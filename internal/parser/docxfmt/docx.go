// Package docxfmt implements the DOCX pipeline: validate, open the OOXML
// archive, extract core-property metadata, walk the body in document order
// converting paragraphs and tables to Markdown, extract images via
// relationships, and normalize to the shared Document model. Chapters are
// intentionally left empty at this boundary: DOCX has no explicit chapter
// structure, so callers re-run the shared Markdown chapter detector over
// the emitted content when they want chapters.
package docxfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/omniparser-go/omniparser/internal/docx"
	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version = "1.0"
	wpm     = 225 // DOCX reading speed
)

var log = logging.For("docx")

// Parser implements parser.Parser for the .docx format.
type Parser struct{}

// New constructs a DOCX Parser.
func New() *Parser { return &Parser{} }

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "docx" }

// Parse runs the full DOCX pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	if err := validate(content, sourcePath); err != nil {
		return nil, err
	}

	d, err := docx.Open(content)
	if err != nil {
		return nil, errs.NewParsing("docx", err)
	}

	info := model.NewProcessingInfo("docx", version, opts.AsMap())

	metadata := buildMetadata(d, int64(len(content)))

	markdown := convertBodyToMarkdown(d, opts)

	var images []model.ImageReference
	if opts.ShouldExtractImages() && opts.ImageOutputDir != "" {
		images, info.Warnings = extractImages(d, opts, info.Warnings)
	}

	cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
	if opts.ShouldCleanText() {
		markdown = cleaner.Clean(markdown)
	}

	wordCount := textutil.CountMarkdownAwareWords(markdown)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              markdown,
		Chapters:             []model.Chapter{},
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
	if strings.ToLower(filepath.Ext(sourcePath)) != ".docx" {
		return errs.NewValidation(sourcePath, "expected .docx extension")
	}
	if len(content) == 0 {
		return errs.NewValidation(sourcePath, "file is empty")
	}
	if int64(len(content)) > 500*1024*1024 {
		log.Warn().Str("file", sourcePath).Msg("docx file exceeds 500 MiB")
	}
	return nil
}

func buildMetadata(d *docx.Document, fileSize int64) model.Metadata {
	m := model.Metadata{OriginalFormat: "docx", FileSize: fileSize}
	m.Title = d.CoreProps.Title
	m.MergeAuthor(d.CoreProps.Creator)
	m.Description = firstNonEmpty(d.CoreProps.Subject, d.CoreProps.Description)

	if d.CoreProps.Keywords != "" {
		m.Tags = splitTags(d.CoreProps.Keywords)
	}

	if d.CoreProps.Created != nil {
		m.PublicationDate = d.CoreProps.Created
	} else if d.CoreProps.Modified != nil {
		m.PublicationDate = d.CoreProps.Modified
	}

	cf := m.EnsureCustomFields()
	if d.CoreProps.LastModifiedBy != "" {
		cf["last_modified_by"] = d.CoreProps.LastModifiedBy
	}
	if d.CoreProps.Modified != nil {
		cf["modified"] = d.CoreProps.Modified.Format(time.RFC3339)
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

var headingStyleRE = regexp.MustCompile(`(?i)heading\s*(\d+)`)

// convertBodyToMarkdown walks the document body in order, converting
// heading paragraphs to ATX headings, other paragraphs to formatted
// Markdown text, and tables to pipe tables.
func convertBodyToMarkdown(d *docx.Document, opts parser.Options) string {
	var sb strings.Builder
	listCounters := map[string]int{}

	for _, el := range d.Body.Elements {
		switch {
		case el.Paragraph != nil:
			p := el.Paragraph
			text := paragraphText(p, d.Relationships, opts.EnableHyperlinksOr())
			if strings.TrimSpace(text) == "" && p.StyleName == "" {
				continue
			}

			styleName := d.Styles[p.StyleName]
			if styleName == "" {
				styleName = p.StyleName
			}

			if m := headingStyleRE.FindStringSubmatch(styleName); m != nil {
				level := atoiCapped(m[1], 6)
				sb.WriteString("\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(text) + "\n\n")
				continue
			}

			if p.Numbered && opts.EnableListsOr() {
				listCounters["default"]++
				sb.WriteString(fmt.Sprintf("%d. %s\n", listCounters["default"], text))
				continue
			}

			sb.WriteString(text + "\n\n")
		case el.Table != nil:
			sb.WriteString(renderDocxTable(el.Table))
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

func atoiCapped(s string, max int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}

// paragraphText renders a paragraph's runs with emphasis markers:
// ***x*** bold+italic, **x** bold, *x* italic, else plain. Hyperlink runs
// resolve their target URL through the relationship table, since OOXML
// stores hyperlink targets outside the run itself; with hyperlinks
// disabled their text renders plain.
func paragraphText(p *docx.Paragraph, rels map[string]string, hyperlinks bool) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		text := r.Text
		if r.Hyperlink && hyperlinks {
			target := rels[r.RelID]
			if target == "" {
				target = "#" + r.RelID
			}
			text = fmt.Sprintf("[%s](%s)", text, target)
		}
		switch {
		case r.Bold && r.Italic:
			sb.WriteString("***" + text + "***")
		case r.Bold:
			sb.WriteString("**" + text + "**")
		case r.Italic:
			sb.WriteString("*" + text + "*")
		default:
			sb.WriteString(text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func renderDocxTable(t *docx.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	width := len(t.Rows[0])
	writeRow := func(cells []string) {
		escaped := make([]string, len(cells))
		for i, c := range cells {
			c = strings.ReplaceAll(c, "\n", " ")
			c = strings.ReplaceAll(c, "|", "\\|")
			escaped[i] = strings.TrimSpace(c)
		}
		sb.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
	}
	writeRow(t.Rows[0])
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return sb.String()
}

// extractImages resolves relationships whose target contains "media/" or
// "image" (docx.ImageRelationships),
// validates with a minimum dimension of 1 (icons accepted), and saves
// with auto-numbering.
func extractImages(d *docx.Document, opts parser.Options, warnings []string) ([]model.ImageReference, []string) {
	if err := os.MkdirAll(opts.ImageOutputDir, 0o755); err != nil {
		return nil, append(warnings, fmt.Sprintf("cannot create image output dir: %v", err))
	}

	imgOpts := processors.ImageExtractorOptions{
		MaxSizeBytes: 50 * 1024 * 1024,
		MinDimension: 1,
		OutputDir:    opts.ImageOutputDir,
	}

	rels := d.ImageRelationships()
	ids := make([]string, 0, len(rels))
	for id := range rels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var images []model.ImageReference
	for i, id := range ids {
		target := rels[id]
		data, err := d.ReadMedia(target)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("image relationship %s unreadable: %v", id, err))
			continue
		}
		absPath, format, err := processors.SaveImage(data, "img", i+1, "", imgOpts)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("image %s failed validation: %v", target, err))
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
	return images, warnings
}
