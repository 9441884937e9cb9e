package processors

import (
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omniparser-go/omniparser/internal/model"
)

// ExtractHTMLMetadata merges OpenGraph, Dublin Core, standard meta tags, and
// <title> into a Metadata record: first
// non-empty among OG → DC → standard for shared fields; publisher from DC
// only; language from <html lang>; tags from the first non-empty list.
func ExtractHTMLMetadata(htmlSource string, sourceURL string) (model.Metadata, error) {
	node, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return model.Metadata{}, err
	}

	var og, dc, std metaSet
	var title, lang string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				collectMeta(n, &og, &dc, &std)
			case atom.Title:
				if n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Html:
				if l := attr(n, "lang"); l != "" {
					lang = l
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	m := model.Metadata{OriginalFormat: "html"}
	m.Title = firstNonEmpty(og.title, dc.title, std.title, title)
	m.Author = firstNonEmpty(og.author, dc.author, std.author)
	m.Description = firstNonEmpty(og.description, dc.description, std.description)
	m.Publisher = dc.publisher
	m.Language = lang

	switch {
	case len(og.tags) > 0:
		m.Tags = og.tags
	case len(dc.tags) > 0:
		m.Tags = dc.tags
	case len(std.tags) > 0:
		m.Tags = std.tags
	}

	dateStr := firstNonEmpty(og.date, dc.date)
	if dateStr != "" {
		if t, err := parseISODate(dateStr); err == nil {
			m.PublicationDate = &t
		}
	}

	cf := m.EnsureCustomFields()
	if og.image != "" {
		cf["og_image"] = og.image
	}
	if sourceURL != "" {
		cf["url"] = sourceURL
	}

	return m, nil
}

type metaSet struct {
	title, author, description, publisher, date, image string
	tags                                                []string
}

func collectMeta(n *html.Node, og, dc, std *metaSet) {
	property := attr(n, "property")
	name := attr(n, "name")
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}

	switch property {
	case "og:title":
		og.title = content
	case "og:description":
		og.description = content
	case "og:article:author":
		og.author = content
	case "og:article:published_time":
		og.date = content
	case "og:article:tag":
		og.tags = append(og.tags, content)
	case "og:image":
		og.image = content
	}

	switch name {
	case "DC.title":
		dc.title = content
	case "DC.creator":
		dc.author = content
	case "DC.description":
		dc.description = content
	case "DC.date":
		dc.date = content
	case "DC.publisher":
		dc.publisher = content
	case "DC.subject":
		for _, part := range strings.Split(content, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				dc.tags = append(dc.tags, part)
			}
		}
	case "description":
		std.description = content
	case "author":
		std.author = content
	case "keywords":
		for _, part := range strings.Split(content, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				std.tags = append(std.tags, part)
			}
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var isoDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range isoDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
