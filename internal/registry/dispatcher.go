package registry

import (
	"os"
	"strings"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/parser/docxfmt"
	"github.com/omniparser-go/omniparser/internal/parser/epubfmt"
	"github.com/omniparser-go/omniparser/internal/parser/htmlfmt"
	"github.com/omniparser-go/omniparser/internal/parser/mdfmt"
	"github.com/omniparser-go/omniparser/internal/parser/pdffmt"
	"github.com/omniparser-go/omniparser/internal/parser/photofmt"
	"github.com/omniparser-go/omniparser/internal/parser/textfmt"
)

func init() {
	RegisterBuiltinParsers(global)
}

// RegisterBuiltinParsers registers the seven format pipelines into r.
// Called once at process init for the global registry, and by tests that
// want an isolated instance.
func RegisterBuiltinParsers(r *Registry) {
	r.Register(Entry{
		Name: "epub", Extensions: []string{".epub"}, Parser: epubfmt.New(),
		Description: "EPUB electronic book", Version: "1.0", Priority: 10,
		Supports: epubMagicBytes,
	})
	r.Register(Entry{
		Name: "pdf", Extensions: []string{".pdf"}, Parser: pdffmt.New(),
		Description: "PDF document", Version: "1.0", Priority: 10,
		Supports: pdfMagicBytes,
	})
	r.Register(Entry{
		Name: "docx", Extensions: []string{".docx"}, Parser: docxfmt.New(),
		Description: "Word OOXML document", Version: "1.0", Priority: 10,
	})
	r.Register(Entry{
		Name: "html", Extensions: []string{".html", ".htm"}, Parser: htmlfmt.New(),
		Description: "HTML document or URL", Version: "1.0", Priority: 10,
	})
	r.Register(Entry{
		Name: "markdown", Extensions: []string{".md", ".markdown"}, Parser: mdfmt.New(),
		Description: "Markdown document", Version: "1.0", Priority: 10,
	})
	r.Register(Entry{
		Name: "text", Extensions: []string{".txt", ".text"}, Parser: textfmt.New(),
		Description: "Plain text document", Version: "1.0", Priority: 10,
	})
	r.Register(Entry{
		Name: "photo", Extensions: []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".webp", ".bmp", ".gif"},
		Parser: photofmt.New(), Description: "Photo/still image", Version: "1.0", Priority: 5,
	})
}

// epubMagicBytes and pdfMagicBytes support content-based detection beyond
// extension matching: both EPUB (a zip container) and PDF carry a
// distinctive magic-byte header readable without a full parse.
func epubMagicBytes(path string, content []byte) bool {
	data := content
	if data == nil {
		data = peekFile(path, 4)
	}
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K'
}

func pdfMagicBytes(path string, content []byte) bool {
	data := content
	if data == nil {
		data = peekFile(path, 5)
	}
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

func peekFile(path string, n int) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil || read < n {
		return nil
	}
	return buf
}

// ParseDocument is the primary entry point. source is a file path or an
// http(s) URL; URLs route straight to the HTML pipeline.
func ParseDocument(source string, opts parser.Options) (*model.Document, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return htmlfmt.New().Parse(nil, source, opts)
	}

	entry, ok := global.GetParser(source)
	if !ok {
		log.Warn().Str("source", source).Msg("no parser registered for extension")
		return nil, errs.NewUnsupportedFormat(source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, errs.NewFileRead(source, "cannot stat file", err)
	}
	if info.IsDir() {
		return nil, errs.NewFileRead(source, "path is a directory", nil)
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return nil, errs.NewFileRead(source, "cannot read file", err)
	}

	doc, err := entry.Parser.Parse(content, source, opts)
	if err != nil {
		log.Error().Str("source", source).Str("parser", entry.Name).Err(err).Msg("parse failed")
		return nil, err
	}
	return doc, nil
}

// GetSupportedFormats returns the sorted list of dotted extensions
// registered in the global registry.
func GetSupportedFormats() []string { return global.SupportedFormats() }

// IsFormatSupported is a boolean test over the global registry, also
// accepting http(s) URLs (always supported via the HTML pipeline).
func IsFormatSupported(source string) bool {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return true
	}
	return global.IsSupported(source)
}
