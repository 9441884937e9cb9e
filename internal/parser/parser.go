// Package parser defines the shared Parser interface and the Options table
// every pipeline consumes.
package parser

import "github.com/omniparser-go/omniparser/internal/model"

// Parser is implemented by every format pipeline. Parse receives file
// content and the originating path (used for relative-path resolution and
// diagnostics) and returns a normalized Document.
type Parser interface {
	Parse(content []byte, sourcePath string, opts Options) (*model.Document, error)
	Name() string
}

// SupportsFunc optionally allows content-based (magic-byte) detection
// beyond extension matching.
type SupportsFunc func(path string, content []byte) bool

// Options is the flat table of options recognized across pipelines.
// Unknown options are ignored rather than rejected; each pipeline applies
// its own defaults for zero-valued fields it cares about.
type Options struct {
	ExtractImages     *bool
	ImageOutputDir    string
	CleanText         *bool
	CleanerConfigPath string
	DetectChapters    *bool
	MinChapterLength  *int
	MinChapterLevel   *int
	MaxChapterLevel   *int

	// EPUB
	UseTOC           *bool
	UseSpineFallback *bool

	// DOCX
	EnableLists      *bool
	EnableHyperlinks *bool

	// PDF
	UseOCR        *bool
	OCRLanguage   string
	OCRTimeoutS   *int
	OCRDPI        *int
	MaxPages      *int
	ExtractTables *bool
	DetectQR      *bool

	// HTML
	Timeout         *int
	RateLimitDelay  *float64
	UserAgent       string
	MaxImageWorkers *int

	// Markdown
	ExtractFrontmatter *bool
	NormalizeHeadings  *bool

	// Plain text
	AutoDetectEncoding *bool
	Encoding           string
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// ShouldExtractImages resolves the option with its documented default (true).
func (o Options) ShouldExtractImages() bool { return boolOr(o.ExtractImages, true) }

// ShouldCleanText resolves CleanText's default (true).
func (o Options) ShouldCleanText() bool { return boolOr(o.CleanText, true) }

// ShouldDetectChapters resolves DetectChapters's default (true).
func (o Options) ShouldDetectChapters() bool { return boolOr(o.DetectChapters, true) }

// MinChapterLengthOr resolves MinChapterLength with the caller's default
// (the EPUB pipeline passes 100; the text pipeline reads MinChapterLength
// directly and applies no minimum when it is unset).
func (o Options) MinChapterLengthOr(def int) int { return intOr(o.MinChapterLength, def) }

// ChapterLevelBand resolves the [min,max] heading band, default [1,2].
func (o Options) ChapterLevelBand() (int, int) {
	return intOr(o.MinChapterLevel, 1), intOr(o.MaxChapterLevel, 2)
}

// UseTOCOr resolves UseTOC, default true.
func (o Options) UseTOCOr() bool { return boolOr(o.UseTOC, true) }

// UseSpineFallbackOr resolves UseSpineFallback, default true.
func (o Options) UseSpineFallbackOr() bool { return boolOr(o.UseSpineFallback, true) }

// EnableListsOr resolves EnableLists, default true.
func (o Options) EnableListsOr() bool { return boolOr(o.EnableLists, true) }

// EnableHyperlinksOr resolves EnableHyperlinks, default true.
func (o Options) EnableHyperlinksOr() bool { return boolOr(o.EnableHyperlinks, true) }

// UseOCROr resolves UseOCR, default true.
func (o Options) UseOCROr() bool { return boolOr(o.UseOCR, true) }

// OCRLanguageOr resolves OCRLanguage, default "eng".
func (o Options) OCRLanguageOr() string {
	if o.OCRLanguage == "" {
		return "eng"
	}
	return o.OCRLanguage
}

// OCRTimeoutSOr resolves OCRTimeoutS, default 300.
func (o Options) OCRTimeoutSOr() int { return intOr(o.OCRTimeoutS, 300) }

// OCRDPIOr resolves OCRDPI, default 300.
func (o Options) OCRDPIOr() int { return intOr(o.OCRDPI, 300) }

// ExtractTablesOr resolves ExtractTables, default true.
func (o Options) ExtractTablesOr() bool { return boolOr(o.ExtractTables, true) }

// DetectQROr resolves DetectQR, default false (opt-in).
func (o Options) DetectQROr() bool { return boolOr(o.DetectQR, false) }

// TimeoutOr resolves Timeout (seconds), default 10.
func (o Options) TimeoutOr() int { return intOr(o.Timeout, 10) }

// RateLimitDelayOr resolves RateLimitDelay (seconds), default 0.
func (o Options) RateLimitDelayOr() float64 { return floatOr(o.RateLimitDelay, 0) }

// UserAgentOr resolves UserAgent, default a descriptive UA string.
func (o Options) UserAgentOr() string {
	if o.UserAgent == "" {
		return "omniparser/1.0 (+https://example.invalid/omniparser)"
	}
	return o.UserAgent
}

// MaxImageWorkersOr resolves MaxImageWorkers, default 5.
func (o Options) MaxImageWorkersOr() int { return intOr(o.MaxImageWorkers, 5) }

// ExtractFrontmatterOr resolves ExtractFrontmatter, default true.
func (o Options) ExtractFrontmatterOr() bool { return boolOr(o.ExtractFrontmatter, true) }

// NormalizeHeadingsOr resolves NormalizeHeadings, default true.
func (o Options) NormalizeHeadingsOr() bool { return boolOr(o.NormalizeHeadings, true) }

// AutoDetectEncodingOr resolves AutoDetectEncoding, default true.
func (o Options) AutoDetectEncodingOr() bool { return boolOr(o.AutoDetectEncoding, true) }

// AsMap renders the effective option set as a map for
// ProcessingInfo.OptionsUsed.
func (o Options) AsMap() map[string]any {
	minLevel, maxLevel := o.ChapterLevelBand()
	m := map[string]any{
		"extract_images":    o.ShouldExtractImages(),
		"image_output_dir":  o.ImageOutputDir,
		"clean_text":        o.ShouldCleanText(),
		"detect_chapters":   o.ShouldDetectChapters(),
		"min_chapter_level": minLevel,
		"max_chapter_level": maxLevel,
	}
	if o.MinChapterLength != nil {
		m["min_chapter_length"] = *o.MinChapterLength
	}
	return m
}
