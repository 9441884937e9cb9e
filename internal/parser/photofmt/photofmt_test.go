package photofmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimalToDMS_Basic(t *testing.T) {
	dms := decimalToDMS(40.6892, "N", "S")
	assert.Contains(t, dms, "40")
	assert.Contains(t, dms, "N")
}

func TestDecimalToDMS_NegativeUsesOtherLabel(t *testing.T) {
	dms := decimalToDMS(-74.0445, "E", "W")
	assert.Contains(t, dms, "W")
}

func TestDMSString_CombinesLatAndLong(t *testing.T) {
	s := dmsString(40.6892, -74.0445)
	assert.Contains(t, s, "N")
	assert.Contains(t, s, "W")
}

func TestRenderMarkdown_IncludesDimensionsAndFormat(t *testing.T) {
	md := renderMarkdown("photo.jpg", 800, 600, "jpeg", exifData{})
	assert.Contains(t, md, "800x600")
	assert.Contains(t, md, "jpeg")
}

func TestRenderMarkdown_IncludesCameraWhenPresent(t *testing.T) {
	md := renderMarkdown("photo.jpg", 800, 600, "jpeg", exifData{cameraMake: "Canon", cameraModel: "EOS R5"})
	assert.Contains(t, md, "Canon")
	assert.Contains(t, md, "EOS R5")
}
