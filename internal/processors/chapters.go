// Package processors holds the cross-format shared processors: the
// markdown-heading chapter detector, the text cleaner, the HTML→Markdown
// converter, the HTML metadata extractor, and the image extractor.
package processors

import (
	"regexp"
	"strings"

	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

var atxHeadingRE = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t]*$`)

type heading struct {
	level    int
	title    string
	position int
}

// DetectChapters scans markdown text for ATX headings within [minLevel,
// maxLevel], and slices the text at heading boundaries into Chapters.
// An empty input returns an empty slice; text with no
// qualifying heading returns a single "Full Document" chapter tagged
// auto_generated.
func DetectChapters(text string, minLevel, maxLevel int) []model.Chapter {
	if text == "" {
		return []model.Chapter{}
	}

	headings := splitHeadings(extractHeadings(text, minLevel, maxLevel))
	if len(headings) == 0 {
		return []model.Chapter{{
			ChapterID:     1,
			Title:         "Full Document",
			Content:       text,
			StartPosition: 0,
			EndPosition:   len(text),
			WordCount:     textutil.CountWhitespaceTokens(text),
			Level:         1,
			Metadata:      map[string]any{"detection_method": "auto_generated"},
		}}
	}

	chapters := make([]model.Chapter, 0, len(headings))
	for i, h := range headings {
		start := h.position
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].position
		}
		content := text[start:end]
		chapters = append(chapters, model.Chapter{
			ChapterID:     i + 1,
			Title:         h.title,
			Content:       content,
			StartPosition: start,
			EndPosition:   end,
			WordCount:     textutil.CountWhitespaceTokens(content),
			Level:         h.level,
		})
	}
	return chapters
}

// splitHeadings narrows a band-filtered heading list down to the headings
// that actually form chapter boundaries: only the shallowest level present
// splits. Deeper in-band headings stay nested inside the preceding
// boundary's content rather than becoming chapters of their own.
func splitHeadings(headings []heading) []heading {
	if len(headings) == 0 {
		return headings
	}
	splitLevel := headings[0].level
	for _, h := range headings[1:] {
		if h.level < splitLevel {
			splitLevel = h.level
		}
	}
	out := make([]heading, 0, len(headings))
	for _, h := range headings {
		if h.level == splitLevel {
			out = append(out, h)
		}
	}
	return out
}

// extractHeadings finds all ATX headings in text, annotated with char
// position, and filters to the requested level band.
func extractHeadings(text string, minLevel, maxLevel int) []heading {
	matches := atxHeadingRE.FindAllStringSubmatchIndex(text, -1)
	var out []heading
	for _, m := range matches {
		level := m[3] - m[2]
		if level < minLevel || level > maxLevel {
			continue
		}
		title := strings.TrimSpace(text[m[4]:m[5]])
		out = append(out, heading{level: level, title: title, position: m[0]})
	}
	return out
}
