package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEngine_MissingBinariesError(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	engine := NewCommandEngine("/tmp/whatever.pdf")
	_, err := engine.Recognize(context.Background(), nil, 1, "eng", 300)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm")
}

func TestNewCommandEngine_BindsSourcePath(t *testing.T) {
	engine := NewCommandEngine("/books/scan.pdf")
	assert.Equal(t, "/books/scan.pdf", engine.SourcePath)
}
