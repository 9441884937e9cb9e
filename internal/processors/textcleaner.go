package processors

import (
	"regexp"
	"strings"

	"github.com/omniparser-go/omniparser/internal/config"
)

var (
	multiSpaceRE  = regexp.MustCompile(`[ \t]{2,}`)
	trailingWSRE  = regexp.MustCompile(`[ \t]+\n`)
	excessBlankRE = regexp.MustCompile(`\n{3,}`)
)

// TextCleaner applies the configured removal/transformation pattern table,
// mojibake repair, and whitespace normalization.
type TextCleaner struct {
	patterns *config.CompiledPatterns
}

// NewTextCleaner loads the pattern table from path (empty for the embedded
// default) and returns a ready-to-use cleaner.
func NewTextCleaner(configPath string) *TextCleaner {
	return &TextCleaner{patterns: config.Load(configPath)}
}

// Clean runs the four-step pipeline: mojibake repair, removals,
// transformations, whitespace normalization. It is idempotent: Clean(Clean(t))
// == Clean(t).
func (c *TextCleaner) Clean(text string) string {
	if text == "" {
		return text
	}
	text = FixMojibake(text)
	text = c.applyRemovals(text)
	text = c.applyTransformations(text)
	text = normalizeWhitespace(text)
	return text
}

func (c *TextCleaner) applyRemovals(text string) string {
	for _, p := range c.patterns.Removal {
		text = p.Regexp.ReplaceAllString(text, "")
	}
	return text
}

func (c *TextCleaner) applyTransformations(text string) string {
	for _, p := range c.patterns.Transformation {
		text = p.Regexp.ReplaceAllString(text, p.Replacement)
	}
	return text
}

func normalizeWhitespace(text string) string {
	text = trailingWSRE.ReplaceAllString(text, "\n")
	text = multiSpaceRE.ReplaceAllString(text, " ")
	text = excessBlankRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// mojibakeReplacer repairs the handful of UTF-8-decoded-as-Latin-1 byte
// sequences ("mojibake") most commonly seen in scraped and converted
// documents.
var mojibakeReplacer = strings.NewReplacer(
	"â€™", "'",
	"â€œ", "“",
	"â€�", "”",
	"â€“", "–",
	"â€”", "—",
	"Ã©", "é",
	"Â ", " ",
)

// FixMojibake repairs a small, well-known set of double-encoded byte
// sequences. It is a standalone step so it can be unit-tested and reused by
// pipelines that clean text outside the full TextCleaner (e.g. markdown
// frontmatter values).
func FixMojibake(text string) string {
	return mojibakeReplacer.Replace(text)
}
