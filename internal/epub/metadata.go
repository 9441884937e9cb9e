package epub

import (
	"strings"
	"time"

	"github.com/omniparser-go/omniparser/internal/model"
)

// opfMetadata is the Dublin Core block of an OPF package document.
type opfMetadata struct {
	Title       []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator     []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Publisher   []string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Date        []string `xml:"http://purl.org/dc/elements/1.1/ date"`
	Language    []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier  []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Description []string `xml:"http://purl.org/dc/elements/1.1/ description"`
	Subject     []string `xml:"http://purl.org/dc/elements/1.1/ subject"`
}

// dateFormats lists the publication-date layouts tried in order,
// including the EPUB-common 2006-01-02T15:04:05Z0700 form.
var dateFormats = []string{
	"2006-01-02T15:04:05Z0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006",
}

func parsePublicationDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// isbnPrefixes are stripped from Dublin Core identifiers that carry an
// ISBN.
var isbnPrefixes = []string{"urn:isbn:", "isbn:", "ISBN:", "urn:ISBN:"}

func extractISBN(identifiers []string) string {
	for _, id := range identifiers {
		lower := strings.ToLower(id)
		if strings.Contains(lower, "isbn") {
			val := id
			for _, p := range isbnPrefixes {
				val = strings.TrimPrefix(val, p)
			}
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// BuildMetadata converts a parsed OPF metadata block into the shared
// Metadata model.
func BuildMetadata(meta opfMetadata, fileSize int64) model.Metadata {
	m := model.Metadata{
		OriginalFormat: "epub",
		FileSize:       fileSize,
	}
	if len(meta.Title) > 0 {
		m.Title = strings.TrimSpace(meta.Title[0])
	}
	if len(meta.Creator) > 0 {
		authors := make([]string, 0, len(meta.Creator))
		for _, c := range meta.Creator {
			if c = strings.TrimSpace(c); c != "" {
				authors = append(authors, c)
			}
		}
		m.Authors = authors
		if len(authors) > 0 {
			m.Author = authors[0]
		}
	}
	if len(meta.Publisher) > 0 {
		m.Publisher = strings.TrimSpace(meta.Publisher[0])
	}
	if len(meta.Date) > 0 {
		m.PublicationDate = parsePublicationDate(meta.Date[0])
	}
	if len(meta.Language) > 0 {
		m.Language = strings.TrimSpace(meta.Language[0])
	}
	if len(meta.Description) > 0 {
		m.Description = strings.TrimSpace(meta.Description[0])
	}
	if len(meta.Subject) > 0 {
		tags := make([]string, 0, len(meta.Subject))
		for _, s := range meta.Subject {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
		m.Tags = tags
	}
	m.ISBN = extractISBN(meta.Identifier)
	return m
}
