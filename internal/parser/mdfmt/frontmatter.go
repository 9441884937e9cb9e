package mdfmt

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/yuin/goldmark"
	gmparser "github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/omniparser-go/omniparser/internal/model"
)

// gmYAML is a goldmark instance carrying only the frontmatter extension,
// used to decode the YAML block (parser.NewContext + frontmatter.Get)
// rather than reaching for a bare yaml.Unmarshal here.
var gmYAML = goldmark.New(goldmark.WithExtensions(&frontmatter.Extender{}))

// decodeYAMLFrontmatter decodes a `---`-delimited block via goldmark's
// frontmatter extension.
func decodeYAMLFrontmatter(block string) (map[string]any, error) {
	ctx := gmparser.NewContext()
	reader := gmtext.NewReader([]byte(block))
	gmYAML.Parser().Parse(reader, gmparser.WithContext(ctx))

	fm := frontmatter.Get(ctx)
	if fm == nil {
		return nil, fmt.Errorf("no frontmatter block recognized")
	}
	var meta map[string]any
	if err := fm.Decode(&meta); err != nil {
		return nil, err
	}
	return meta, nil
}

var (
	yamlFrontmatterRE = regexp.MustCompile(`(?s)^---\r?\n(.*?\n)---[ \t]*\r?\n`)
	tomlFrontmatterRE = regexp.MustCompile(`(?s)^\+\+\+\r?\n(.*?\n)\+\+\+[ \t]*\r?\n`)
)

// extractFrontmatter detects YAML (`---`), TOML (`+++`), or JSON (leading
// `{`) frontmatter, in that order. A parse failure discards the
// frontmatter and returns the original text unchanged.
func extractFrontmatter(text string, warnings []string) (map[string]any, string, []string) {
	if m := yamlFrontmatterRE.FindStringSubmatch(text); m != nil {
		meta, err := decodeYAMLFrontmatter(text[:len(m[0])])
		if err != nil {
			log.Warn().Err(err).Msg("yaml frontmatter failed to parse; discarding")
			warnings = append(warnings, "yaml frontmatter failed to parse; discarded")
			return nil, text, warnings
		}
		if meta == nil {
			return nil, text[len(m[0]):], warnings
		}
		return meta, text[len(m[0]):], warnings
	}

	if m := tomlFrontmatterRE.FindStringSubmatch(text); m != nil {
		var meta map[string]any
		if _, err := toml.Decode(m[1], &meta); err != nil {
			log.Warn().Err(err).Msg("toml frontmatter failed to parse; discarding")
			warnings = append(warnings, "toml frontmatter failed to parse; discarded")
			return nil, text, warnings
		}
		return meta, text[len(m[0]):], warnings
	}

	if strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "{") {
		if raw, rest, ok := scanBalancedJSON(text); ok {
			var meta map[string]any
			if err := json.Unmarshal([]byte(raw), &meta); err != nil {
				log.Warn().Err(err).Msg("json frontmatter failed to parse; discarding")
				warnings = append(warnings, "json frontmatter failed to parse; discarded")
				return nil, text, warnings
			}
			return meta, rest, warnings
		}
	}

	return nil, text, warnings
}

// scanBalancedJSON finds the closing brace of a leading JSON object,
// string-aware so braces inside string literals don't confuse depth
// counting.
func scanBalancedJSON(text string) (jsonText string, rest string, ok bool) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	offset := len(text) - len(trimmed)

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// no-op; inside a string literal
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end := offset + i + 1
				return text[offset:end], text[end:], true
			}
		}
	}
	return "", text, false
}

// applyMetadataFields maps frontmatter keys to Metadata case-insensitively,
// tolerating the known-typo spellings
// "titel"/"autor" into custom_fields with a suggestion warning.
func applyMetadataFields(m *model.Metadata, fm map[string]any, warnings []string) []string {
	if fm == nil {
		return warnings
	}

	lower := make(map[string]any, len(fm))
	for k, v := range fm {
		lower[strings.ToLower(k)] = v
	}

	if v, ok := stringField(lower, "title"); ok {
		m.Title = v
	}
	if v, ok := lower["author"]; ok {
		m.Authors = append(m.Authors, stringsOf(v)...)
	}
	if v, ok := lower["authors"]; ok {
		m.Authors = append(m.Authors, stringsOf(v)...)
	}
	if len(m.Authors) > 0 {
		m.Author = m.Authors[0]
	}

	for _, key := range []string{"date", "publication_date", "published"} {
		if v, ok := stringField(lower, key); ok {
			if t, err := parseFlexibleDate(v); err == nil {
				m.PublicationDate = &t
			} else {
				warnings = append(warnings, fmt.Sprintf("could not parse date field %q: %v", key, v))
			}
			break
		}
	}

	if v, ok := lower["tags"]; ok {
		m.Tags = append(m.Tags, splitListField(v)...)
	}
	if v, ok := lower["keywords"]; ok {
		m.Tags = append(m.Tags, splitListField(v)...)
	}

	if v, ok := stringField(lower, "description"); ok {
		m.Description = v
	} else if v, ok := stringField(lower, "summary"); ok {
		m.Description = v
	}

	if v, ok := stringField(lower, "language"); ok {
		m.Language = v
	} else if v, ok := stringField(lower, "lang"); ok {
		m.Language = v
	}

	if v, ok := stringField(lower, "publisher"); ok {
		m.Publisher = v
	}

	known := map[string]bool{
		"title": true, "author": true, "authors": true, "date": true,
		"publication_date": true, "published": true, "tags": true,
		"keywords": true, "description": true, "summary": true,
		"language": true, "lang": true, "publisher": true,
	}

	cf := m.EnsureCustomFields()
	for k, v := range lower {
		if known[k] {
			continue
		}
		if canonical, isTypo := knownTypoFields[k]; isTypo {
			cf[k] = v
			warnings = append(warnings, fmt.Sprintf("frontmatter field %q looks like a typo for %q", k, canonical))
			continue
		}
		cf[k] = v
	}

	return warnings
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func splitListField(v any) []string {
	switch t := v.(type) {
	case []any:
		return stringsOf(t)
	case []string:
		return t
	case string:
		fields := strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' })
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

var flexibleDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range flexibleDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

var (
	setextH1RE = regexp.MustCompile(`(?m)^([^\n]+)\n=+[ \t]*$`)
	setextH2RE = regexp.MustCompile(`(?m)^([^\n]+)\n-{3,}[ \t]*$`)
	listMarkRE = regexp.MustCompile(`(?m)^(\s*)\*(\s+)`)
)

// normalizeSetextHeadings converts Setext-style underlined headings to ATX,
// applying the -{3,} branch only when the underline
// length stays within 50% of the title length (avoids treating a
// horizontal rule as a heading underline).
func normalizeSetextHeadings(text string) string {
	text = setextH1RE.ReplaceAllString(text, "# $1")

	return replaceWithCondition(text, setextH2RE, func(m []string, full string) string {
		title := m[1]
		underline := strings.TrimSpace(strings.Split(full, "\n")[1])
		if !withinHalf(len(title), len(underline)) {
			return full
		}
		return "## " + title
	})
}

func withinHalf(titleLen, underlineLen int) bool {
	if titleLen == 0 {
		return false
	}
	diff := titleLen - underlineLen
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(titleLen) <= 0.5
}

func replaceWithCondition(text string, re *regexp.Regexp, fn func(m []string, full string) string) string {
	return re.ReplaceAllStringFunc(text, func(full string) string {
		m := re.FindStringSubmatch(full)
		return fn(m, full)
	})
}

// normalizeListMarkers converts `*` bullet markers to `-`.
func normalizeListMarkers(text string) string {
	return listMarkRE.ReplaceAllString(text, "$1-$2")
}

var (
	inlineImageRE   = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	referenceImgRE  = regexp.MustCompile(`!\[([^\]]*)\]\[([^\]]+)\]`)
	refDefinitionRE = regexp.MustCompile(`(?m)^\[([^\]]+)\]:\s*(\S+)(?:\s+"[^"]*")?\s*$`)
)

// extractImageReferences collects inline and reference-style image
// references, deduplicated by resolved path.
func extractImageReferences(text, sourcePath string) []model.ImageReference {
	defs := map[string]string{}
	for _, m := range refDefinitionRE.FindAllStringSubmatch(text, -1) {
		defs[strings.ToLower(m[1])] = m[2]
	}

	seen := map[string]bool{}
	var images []model.ImageReference
	idx := 0

	add := func(alt, src string) {
		resolved := resolveImagePath(sourcePath, src)
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		idx++
		images = append(images, model.ImageReference{
			ImageID:  fmt.Sprintf("img_%03d", idx),
			FilePath: resolved,
			AltText:  alt,
			Format:   formatFromSrc(src),
		})
	}

	for _, m := range inlineImageRE.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
	}
	for _, m := range referenceImgRE.FindAllStringSubmatch(text, -1) {
		if target, ok := defs[strings.ToLower(m[2])]; ok {
			add(m[1], target)
		}
	}

	return images
}

// resolveImagePath resolves a relative image path against the source
// file's directory; data URIs and HTTP(S) URLs pass through verbatim.
func resolveImagePath(sourcePath, src string) string {
	if strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	if filepath.IsAbs(src) || sourcePath == "" {
		return src
	}
	return filepath.Join(filepath.Dir(sourcePath), src)
}

var fmtQueryRE = regexp.MustCompile(`[?&](?:format|fmt)=([a-zA-Z0-9]+)`)

// formatFromSrc resolves an image's format from its extension, a data URI
// media type, or a query-string hint, defaulting to "unknown".
func formatFromSrc(src string) string {
	if strings.HasPrefix(src, "data:") {
		if idx := strings.Index(src, ";"); idx > 5 {
			mediaType := src[5:idx]
			if parts := strings.SplitN(mediaType, "/", 2); len(parts) == 2 {
				return parts[1]
			}
		}
		return "unknown"
	}
	if m := fmtQueryRE.FindStringSubmatch(src); m != nil {
		return strings.ToLower(m[1])
	}
	ext := ""
	if idx := strings.LastIndex(src, "."); idx >= 0 {
		end := len(src)
		if q := strings.IndexAny(src[idx:], "?#"); q >= 0 {
			end = idx + q
		}
		ext = strings.ToLower(src[idx+1 : end])
	}
	if ext == "" {
		return "unknown"
	}
	return ext
}
