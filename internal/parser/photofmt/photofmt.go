// Package photofmt implements the photo pipeline: validate
// against a fixed extension set, probe dimensions, read EXIF (camera, lens,
// exposure, GPS, orientation, timestamps, copyright, artist), and render a
// Markdown metadata summary as the Document's content.
package photofmt

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version = "1.0"
	wpm     = 200
)

var log = logging.For("photo")

var supportedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tiff": true, ".tif": true,
	".webp": true, ".bmp": true, ".gif": true,
}

// Parser implements parser.Parser for still-image photo files.
type Parser struct{}

// New constructs a Photo Parser.
func New() *Parser { return &Parser{} }

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "photo" }

// Parse runs the full photo pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !supportedExtensions[ext] {
		return nil, errs.NewValidation(sourcePath, fmt.Sprintf("unsupported photo extension %q", ext))
	}
	if len(content) == 0 {
		return nil, errs.NewValidation(sourcePath, "file is empty")
	}

	info := model.NewProcessingInfo("photo", version, opts.AsMap())

	width, height, format := processors.ProbeDimensions(content)
	if format == "unknown" {
		return nil, errs.NewParsing("photo", fmt.Errorf("image library cannot decode %s", sourcePath))
	}

	photoExif := readEXIF(content, &info)

	metadata := model.Metadata{OriginalFormat: "photo", FileSize: int64(len(content))}
	cf := metadata.EnsureCustomFields()
	if photoExif.artist != "" {
		metadata.Author = photoExif.artist
	}
	if photoExif.copyright != "" {
		cf["copyright"] = photoExif.copyright
	}
	if photoExif.dateTaken != nil {
		metadata.PublicationDate = photoExif.dateTaken
	}

	markdown := renderMarkdown(sourcePath, width, height, format, photoExif)

	images := []model.ImageReference{{
		ImageID:  "img_001",
		FilePath: sourcePath,
		Width:    width,
		Height:   height,
		Format:   format,
	}}

	wordCount := textutil.CountWords(markdown)
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

// exifData is the subset of EXIF fields surfaced in the rendered summary.
type exifData struct {
	cameraMake, cameraModel   string
	lensMake, lensModel       string
	aperture, focalLength     string
	shutterSpeed              string
	iso                       string
	orientation               int
	latitude, longitude       float64
	hasGPS                    bool
	altitude                  float64
	dateTaken, dateDigitized  *time.Time
	copyright, artist         string
}

func readEXIF(content []byte, info *model.ProcessingInfo) exifData {
	var data exifData

	x, err := exif.Decode(bytes.NewReader(content))
	if err != nil {
		info.AddWarning("no EXIF data found or EXIF parsing failed")
		log.Debug().Err(err).Msg("exif decode failed")
		return data
	}

	data.cameraMake = tagString(x, exif.Make)
	data.cameraModel = tagString(x, exif.Model)
	data.lensMake = tagString(x, exif.LensMake)
	data.lensModel = tagString(x, exif.LensModel)
	data.copyright = tagString(x, exif.Copyright)
	data.artist = tagString(x, exif.Artist)

	if v, err := x.Get(exif.FNumber); err == nil {
		if num, denom, err := v.Rat2(0); err == nil && denom != 0 {
			data.aperture = fmt.Sprintf("f/%.1f", float64(num)/float64(denom))
		}
	}
	if v, err := x.Get(exif.FocalLength); err == nil {
		if num, denom, err := v.Rat2(0); err == nil && denom != 0 {
			data.focalLength = fmt.Sprintf("%.0fmm", float64(num)/float64(denom))
		}
	}
	if v, err := x.Get(exif.ExposureTime); err == nil {
		if num, denom, err := v.Rat2(0); err == nil && num != 0 {
			data.shutterSpeed = fmt.Sprintf("%d/%d s", num, denom)
		}
	}
	if v, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := v.Int(0); err == nil {
			data.iso = strconv.Itoa(iso)
		}
	}
	if v, err := x.Get(exif.Orientation); err == nil {
		if o, err := v.Int(0); err == nil {
			data.orientation = o
		}
	}

	if lat, long, err := x.LatLong(); err == nil {
		data.hasGPS = true
		data.latitude = lat
		data.longitude = long
	}
	if v, err := x.Get(exif.GPSAltitude); err == nil {
		if num, denom, err := v.Rat2(0); err == nil && denom != 0 {
			data.altitude = float64(num) / float64(denom)
		}
	}

	if t, err := x.DateTime(); err == nil {
		data.dateTaken = &t
	}
	if v, err := x.Get(exif.DateTimeDigitized); err == nil {
		if s, err := v.StringVal(); err == nil {
			if t, err := time.Parse("2006:01:02 15:04:05", s); err == nil {
				data.dateDigitized = &t
			}
		}
	}

	return data
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	v, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := v.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// renderMarkdown builds the Markdown metadata rendering that serves as the
// Document's content.
func renderMarkdown(sourcePath string, width, height int, format string, e exifData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", filepath.Base(sourcePath))
	fmt.Fprintf(&sb, "- **Dimensions:** %dx%d\n", width, height)
	fmt.Fprintf(&sb, "- **Format:** %s\n", format)

	if e.cameraMake != "" || e.cameraModel != "" {
		fmt.Fprintf(&sb, "- **Camera:** %s %s\n", e.cameraMake, e.cameraModel)
	}
	if e.lensMake != "" || e.lensModel != "" {
		fmt.Fprintf(&sb, "- **Lens:** %s %s\n", e.lensMake, e.lensModel)
	}
	if e.aperture != "" {
		fmt.Fprintf(&sb, "- **Aperture:** %s\n", e.aperture)
	}
	if e.shutterSpeed != "" {
		fmt.Fprintf(&sb, "- **Shutter speed:** %s\n", e.shutterSpeed)
	}
	if e.iso != "" {
		fmt.Fprintf(&sb, "- **ISO:** %s\n", e.iso)
	}
	if e.focalLength != "" {
		fmt.Fprintf(&sb, "- **Focal length:** %s\n", e.focalLength)
	}
	if e.orientation != 0 {
		fmt.Fprintf(&sb, "- **Orientation:** %d\n", e.orientation)
	}
	if e.hasGPS {
		fmt.Fprintf(&sb, "- **GPS:** %s\n", dmsString(e.latitude, e.longitude))
	}
	if e.dateTaken != nil {
		fmt.Fprintf(&sb, "- **Date taken:** %s\n", e.dateTaken.Format(time.RFC3339))
	}
	if e.dateDigitized != nil {
		fmt.Fprintf(&sb, "- **Date digitized:** %s\n", e.dateDigitized.Format(time.RFC3339))
	}
	if e.artist != "" {
		fmt.Fprintf(&sb, "- **Artist:** %s\n", e.artist)
	}
	if e.copyright != "" {
		fmt.Fprintf(&sb, "- **Copyright:** %s\n", e.copyright)
	}

	return sb.String()
}

// dmsString converts decimal-degree coordinates to a degrees/minutes/
// seconds string for the human-readable summary.
func dmsString(lat, long float64) string {
	return fmt.Sprintf("%s %s", decimalToDMS(lat, "N", "S"), decimalToDMS(long, "E", "W"))
}

func decimalToDMS(decimal float64, posLabel, negLabel string) string {
	dir := posLabel
	if decimal < 0 {
		dir = negLabel
		decimal = -decimal
	}
	degrees := int(decimal)
	minutesFloat := (decimal - float64(degrees)) * 60
	minutes := int(minutesFloat)
	seconds := (minutesFloat - float64(minutes)) * 60
	return fmt.Sprintf("%d°%d'%.1f\"%s", degrees, minutes, seconds, dir)
}
