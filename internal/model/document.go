// Package model provides the normalized document representation shared by
// every parsing pipeline: Document, Chapter, Metadata, ProcessingInfo,
// ImageReference, and QRCodeReference.
package model

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Document is the universal container returned by every pipeline,
// regardless of source format. A Document exclusively owns its chapters,
// images, metadata, and processing info.
type Document struct {
	DocumentID           string           `json:"document_id"`
	Content              string           `json:"content"`
	Chapters             []Chapter        `json:"chapters"`
	Images               []ImageReference `json:"images"`
	Metadata             Metadata         `json:"metadata"`
	ProcessingInfo       ProcessingInfo   `json:"processing_info"`
	WordCount            int              `json:"word_count"`
	EstimatedReadingTime int              `json:"estimated_reading_time"`
}

// NewDocumentID returns a fresh unique document identifier.
func NewDocumentID() string {
	return uuid.New().String()
}

// GetChapter returns the chapter with the given 1-based ID, or nil.
func (d *Document) GetChapter(chapterID int) *Chapter {
	for i := range d.Chapters {
		if d.Chapters[i].ChapterID == chapterID {
			return &d.Chapters[i]
		}
	}
	return nil
}

// GetTextRange extracts content[start:end], clamped to valid bounds.
func (d *Document) GetTextRange(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.Content) {
		end = len(d.Content)
	}
	if start >= end {
		return ""
	}
	return d.Content[start:end]
}

// ReadingTime computes max(1, round(wordCount/wpm)).
func ReadingTime(wordCount int, wpm float64) int {
	if wpm <= 0 {
		wpm = 200
	}
	rt := int(float64(wordCount)/wpm + 0.5)
	if rt < 1 {
		rt = 1
	}
	return rt
}

// SaveJSON writes the document as indented UTF-8 JSON, instants as ISO-8601.
func (d *Document) SaveJSON(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDocumentJSON reads a Document previously written by SaveJSON.
func LoadDocumentJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Chapter is a chapter or section with position tracking into the parent
// Document's Content, enabling text-range extraction.
type Chapter struct {
	ChapterID     int            `json:"chapter_id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	StartPosition int            `json:"start_position"`
	EndPosition   int            `json:"end_position"`
	WordCount     int            `json:"word_count"`
	Level         int            `json:"level"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// DetectionMethod reads the conventional metadata tag, defaulting to "".
func (c Chapter) DetectionMethod() string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata["detection_method"].(string); ok {
		return v
	}
	return ""
}

// DisambiguateTitles appends " (n)" to duplicate titles in place.
func DisambiguateTitles(chapters []Chapter) {
	seen := make(map[string]int, len(chapters))
	for i := range chapters {
		title := chapters[i].Title
		seen[title]++
		if n := seen[title]; n > 1 {
			chapters[i].Title = title + " (" + strconv.Itoa(n) + ")"
		}
	}
}

// RenumberChapters reassigns ChapterID to a contiguous 1..N sequence in
// slice order.
func RenumberChapters(chapters []Chapter) {
	for i := range chapters {
		chapters[i].ChapterID = i + 1
	}
}

// ProcessingInfo records how a Document was produced. Created once per
// parse; warnings accumulate while the parse runs and ProcessingTime is
// set at the end via Finish.
type ProcessingInfo struct {
	ParserUsed     string         `json:"parser_used"`
	ParserVersion  string         `json:"parser_version"`
	ProcessingTime float64        `json:"processing_time"`
	Timestamp      time.Time      `json:"timestamp"`
	Warnings       []string       `json:"warnings"`
	OptionsUsed    map[string]any `json:"options_used"`
}

// AddWarning appends a human-readable warning.
func (p *ProcessingInfo) AddWarning(msg string) {
	p.Warnings = append(p.Warnings, msg)
}

// NewProcessingInfo starts a ProcessingInfo record; the caller sets
// ProcessingTime via Finish once parsing completes.
func NewProcessingInfo(parser, version string, options map[string]any) ProcessingInfo {
	return ProcessingInfo{
		ParserUsed:    parser,
		ParserVersion: version,
		Timestamp:     time.Now().UTC(),
		Warnings:      []string{},
		OptionsUsed:   options,
	}
}

// Finish sets ProcessingTime from the given start time.
func (p *ProcessingInfo) Finish(start time.Time) {
	p.ProcessingTime = time.Since(start).Seconds()
}
