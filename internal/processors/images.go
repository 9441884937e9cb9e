package processors

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageExtractorOptions configures validation/saving thresholds;
// pipelines override MinDimension (EPUB/DOCX use 1 to preserve icons,
// PDF/HTML use 100).
type ImageExtractorOptions struct {
	MaxSizeBytes  int64
	MinDimension  int
	OutputDir     string
	PreserveSub   bool // preserve original subdirectory path under OutputDir
}

// DefaultImageExtractorOptions returns the baseline limits.
func DefaultImageExtractorOptions(outputDir string) ImageExtractorOptions {
	return ImageExtractorOptions{
		MaxSizeBytes: 50 * 1024 * 1024,
		MinDimension: 100,
		OutputDir:    outputDir,
	}
}

// ValidateImageData checks non-empty, size, and that an image library can
// decode it. The dimension floor is validated by the caller via
// ProbeDimensions since pipelines apply different minimums.
func ValidateImageData(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image data")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return fmt.Errorf("image exceeds max size %d bytes", maxSize)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("image library cannot decode data: %w", err)
	}
	return nil
}

// ProbeDimensions returns (width, height, format) or (0, 0, "unknown") on
// failure.
func ProbeDimensions(data []byte) (int, int, string) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "unknown"
	}
	return cfg.Width, cfg.Height, format
}

// DetectImageFormat sniffs magic bytes, falling back to the given
// content-type/extension hint (unknown defaults to png).
func DetectImageFormat(data []byte, hint string) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case len(data) >= 2 && (bytes.Equal(data[:2], []byte{0x42, 0x4D})):
		return "bmp"
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.Equal(data[:4], []byte{0x4D, 0x4D, 0x00, 0x2A})):
		return "tiff"
	}
	switch ExtensionFromMediaTypeHint(hint) {
	case "jpg", "jpeg":
		return "jpeg"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	case "bmp":
		return "bmp"
	case "tiff", "tif":
		return "tiff"
	}
	return "png"
}

// ExtensionFromMediaTypeHint extracts a short extension from a MIME type or
// filename hint.
func ExtensionFromMediaTypeHint(hint string) string {
	ext := filepath.Ext(hint)
	if ext != "" {
		return ext[1:]
	}
	switch hint {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	}
	return ""
}

// SaveImage validates and persists image bytes under opts.OutputDir,
// naming the file deterministically ({base}_{NNN}.{ext}) or preserving
// subPath when opts.PreserveSub is set. Returns the absolute path and
// detected format.
func SaveImage(data []byte, base string, index int, subPath string, opts ImageExtractorOptions) (string, string, error) {
	if err := ValidateImageData(data, opts.MaxSizeBytes); err != nil {
		return "", "", err
	}
	w, h, format := ProbeDimensions(data)
	if format == "unknown" {
		format = DetectImageFormat(data, "")
	}
	if opts.MinDimension > 0 && (w < opts.MinDimension || h < opts.MinDimension) {
		return "", "", fmt.Errorf("image dimensions %dx%d below minimum %d", w, h, opts.MinDimension)
	}

	var outPath string
	if opts.PreserveSub && subPath != "" {
		outPath = filepath.Join(opts.OutputDir, subPath)
	} else {
		outPath = filepath.Join(opts.OutputDir, fmt.Sprintf("%s_%03d.%s", base, index, format))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", "", err
	}

	abs, err := filepath.Abs(outPath)
	if err != nil {
		abs = outPath
	}
	return abs, format, nil
}
