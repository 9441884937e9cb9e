// Package ocr defines the OCR boundary used by the PDF pipeline's
// scanned-document path, plus CommandEngine, the default implementation:
// page rasterization via `pdftoppm` and text recognition via `tesseract`,
// both shelled out to as external binaries. Callers wanting a different
// engine (e.g. a cloud OCR API) construct their own pdffmt.Parser with the
// OCR field set and register it in place of the built-in entry.
package ocr

import "context"

// Result is one page's recognized text. No font metadata is produced, so
// OCR output never drives heading detection.
type Result struct {
	Page int
	Text string
}

// Engine recognizes text from rendered page images. CommandEngine is the
// default; an embedding application may supply its own (e.g. a cloud OCR
// client) or NoOp to skip recognition entirely.
type Engine interface {
	// Recognize runs OCR over a rendered page image at the given DPI, in
	// the given language code (e.g. "eng"), honoring ctx cancellation.
	Recognize(ctx context.Context, pageImage []byte, page int, language string, dpi int) (Result, error)
}

// NoOp performs no recognition and reports every page as empty. It exists
// for tests and for callers that explicitly want to skip OCR rather than
// pay for it; it is not the PDF pipeline's default engine (CommandEngine
// is).
type NoOp struct{}

// Recognize always returns an empty Result without error.
func (NoOp) Recognize(_ context.Context, _ []byte, page int, _ string, _ int) (Result, error) {
	return Result{Page: page}, nil
}
