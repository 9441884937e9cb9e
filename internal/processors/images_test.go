package processors

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestValidateImageData_RejectsEmptyAndOversized(t *testing.T) {
	assert.Error(t, ValidateImageData(nil, 0))
	assert.Error(t, ValidateImageData(pngBytes(t, 4, 4), 10))
	assert.Error(t, ValidateImageData([]byte("not an image"), 0))
	assert.NoError(t, ValidateImageData(pngBytes(t, 4, 4), 0))
}

func TestProbeDimensions(t *testing.T) {
	w, h, format := ProbeDimensions(pngBytes(t, 12, 7))
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)
	assert.Equal(t, "png", format)

	w, h, format = ProbeDimensions([]byte("garbage"))
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, "unknown", format)
}

func TestDetectImageFormat_MagicBytes(t *testing.T) {
	assert.Equal(t, "png", DetectImageFormat(pngBytes(t, 2, 2), ""))
	assert.Equal(t, "jpeg", DetectImageFormat([]byte{0xFF, 0xD8, 0xFF, 0xE0}, ""))
	assert.Equal(t, "gif", DetectImageFormat([]byte("GIF89a..."), ""))
	assert.Equal(t, "png", DetectImageFormat([]byte("????"), ""))
	assert.Equal(t, "jpeg", DetectImageFormat([]byte("????"), "image/jpeg"))
}

func TestSaveImage_AutoNumberedName(t *testing.T) {
	dir := t.TempDir()
	opts := ImageExtractorOptions{MaxSizeBytes: 0, MinDimension: 1, OutputDir: dir}

	path, format, err := SaveImage(pngBytes(t, 8, 8), "img", 3, "", opts)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, filepath.Join(dir, "img_003.png"), path)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveImage_PreservesSubPath(t *testing.T) {
	dir := t.TempDir()
	opts := ImageExtractorOptions{MinDimension: 1, OutputDir: dir, PreserveSub: true}

	path, _, err := SaveImage(pngBytes(t, 8, 8), "img", 1, "OEBPS/images/cover.png", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "OEBPS/images/cover.png"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveImage_EnforcesMinDimension(t *testing.T) {
	dir := t.TempDir()
	opts := ImageExtractorOptions{MinDimension: 100, OutputDir: dir}

	_, _, err := SaveImage(pngBytes(t, 8, 8), "img", 1, "", opts)
	assert.Error(t, err)
}
