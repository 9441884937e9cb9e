package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/omniparser-go/omniparser/internal/logging"
)

var log = logging.For("ocr")

// CommandEngine recognizes text by shelling out to the system's `pdftoppm`
// (poppler-utils) to rasterize one page of sourcePath to a PNG, then
// `tesseract` to recognize text from that image. Both binaries must be on
// PATH; a missing binary degrades to a per-page warning rather than a
// silent empty result (internal/parser/pdffmt's runOCR logs Recognize
// errors into ProcessingInfo.Warnings and continues).
type CommandEngine struct {
	// SourcePath is the PDF file rasterized per page.
	SourcePath string
}

// NewCommandEngine returns the default OCR Engine used by the PDF pipeline
// when no engine is injected: real rasterization plus real recognition
// when pdftoppm/tesseract are installed, explicit errors otherwise.
func NewCommandEngine(sourcePath string) *CommandEngine {
	return &CommandEngine{SourcePath: sourcePath}
}

// Recognize rasterizes page from SourcePath via pdftoppm at dpi, then runs
// tesseract over the rendered image in language. pageImage is ignored: this
// engine owns its own rasterization step rather than accepting
// pre-rendered bytes.
func (e *CommandEngine) Recognize(ctx context.Context, _ []byte, page int, language string, dpi int) (Result, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return Result{Page: page}, fmt.Errorf("ocr: pdftoppm not found on PATH (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return Result{Page: page}, fmt.Errorf("ocr: tesseract not found on PATH (install tesseract-ocr): %w", err)
	}

	imagePath, cleanup, err := e.rasterizePage(ctx, page, dpi)
	if err != nil {
		return Result{Page: page}, fmt.Errorf("ocr: rasterizing page %d: %w", page, err)
	}
	defer cleanup()

	text, err := recognizeImage(ctx, imagePath, language)
	if err != nil {
		return Result{Page: page}, fmt.Errorf("ocr: recognizing page %d: %w", page, err)
	}
	return Result{Page: page, Text: text}, nil
}

// rasterizePage renders a single page to a PNG in a fresh temp directory,
// returning its path and a cleanup func that removes the directory.
func (e *CommandEngine) rasterizePage(ctx context.Context, page, dpi int) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "omniparser-ocr-")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png", "-r", strconv.Itoa(dpi), "-f", pageStr, "-l", pageStr,
		e.SourcePath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		cleanup()
		return "", func() {}, fmt.Errorf("pdftoppm produced no output for page %d", page)
	}
	return matches[0], cleanup, nil
}

// recognizeImage runs tesseract over imagePath, writing recognized text to
// stdout.
func recognizeImage(ctx context.Context, imagePath, language string) (string, error) {
	cmd := exec.CommandContext(ctx, "tesseract", imagePath, "stdout", "-l", language)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			log.Warn().Str("image", imagePath).Str("stderr", string(exitErr.Stderr)).Msg("tesseract exited non-zero")
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
