package htmlfmt

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniparser-go/omniparser/internal/parser"
)

func servePNG(t *testing.T, w, h int) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "image/png")
		_, _ = rw.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractImages_DownloadsAndOrders(t *testing.T) {
	srv := servePNG(t, 200, 150)
	htmlSource := `<html><body>` +
		`<img src="` + srv.URL + `/a.png">` +
		`<img src="` + srv.URL + `/b.png">` +
		`</body></html>`

	p := New()
	opts := parser.Options{ImageOutputDir: t.TempDir()}
	rl := &rateLimiter{}

	images, warnings := p.extractImages(htmlSource, srv.URL, opts, rl, nil)
	assert.Empty(t, warnings)
	require.Len(t, images, 2)
	assert.Equal(t, "img_001", images[0].ImageID)
	assert.Equal(t, "img_002", images[1].ImageID)
	assert.Equal(t, 200, images[0].Width)
	assert.Equal(t, "png", images[0].Format)
	assert.FileExists(t, images[0].FilePath)
}

func TestParse_NoOutputDirFallsBackToTempDir(t *testing.T) {
	srv := servePNG(t, 200, 150)
	htmlSource := `<html><body><article><p>This article body carries enough prose to satisfy the ` +
		`primary content extractor's minimum text threshold for a successful parse run.</p>` +
		`<img src="` + srv.URL + `/pic.png"></article></body></html>`

	doc, err := New().Parse([]byte(htmlSource), "page.html", parser.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Images, 1)
	assert.FileExists(t, doc.Images[0].FilePath)
}

func TestExtractImages_SmallImagesFilteredWithWarning(t *testing.T) {
	srv := servePNG(t, 10, 10)
	htmlSource := `<img src="` + srv.URL + `/tiny.png">`

	p := New()
	opts := parser.Options{ImageOutputDir: t.TempDir()}
	images, warnings := p.extractImages(htmlSource, srv.URL, opts, &rateLimiter{}, nil)
	assert.Empty(t, images)
	assert.NotEmpty(t, warnings)
}

func TestExtractImages_FailedDownloadNeverFailsParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	htmlSource := `<img src="` + srv.URL + `/gone.png">`

	p := New()
	opts := parser.Options{ImageOutputDir: t.TempDir()}
	images, warnings := p.extractImages(htmlSource, srv.URL, opts, &rateLimiter{}, nil)
	assert.Empty(t, images)
	assert.NotEmpty(t, warnings)
}
