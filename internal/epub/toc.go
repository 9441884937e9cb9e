package epub

import (
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omniparser-go/omniparser/internal/model"
)

func parseNCX(data []byte) (*ncxDocument, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// parseNavTOC parses an EPUB3 nav.xhtml document's toc <nav> into a nested
// TableOfContents. The toc <nav> is located with an explicit worklist walk;
// nested <ol> lists are then converted recursively, one call per level.
func parseNavTOC(xhtml string) *model.TableOfContents {
	node, err := html.Parse(strings.NewReader(xhtml))
	if err != nil {
		return model.NewTableOfContents()
	}

	navNode := findTOCNav(node)
	if navNode == nil {
		return model.NewTableOfContents()
	}

	olNode := findChildAtom(navNode, atom.Ol)
	if olNode == nil {
		return model.NewTableOfContents()
	}

	toc := model.NewTableOfContents()
	toc.Entries = parseNavList(olNode, 1)
	return toc
}

// findTOCNav finds a <nav> element whose epub:type is "toc" or absent via
// an explicit worklist walk.
func findTOCNav(root *html.Node) *html.Node {
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type == html.ElementNode && n.DataAtom == atom.Nav {
			if epubType := htmlAttr(n, "epub:type"); epubType == "toc" || epubType == "" {
				return n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
	}
	return nil
}

func findChildAtom(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == a {
			return c
		}
	}
	return nil
}

// parseNavList converts an <ol> of <li><a>title</a><ol>...</ol></li> into
// TOCEntry nodes at the given nesting level.
func parseNavList(ol *html.Node, level int) []model.TOCEntry {
	var entries []model.TOCEntry
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.DataAtom != atom.Li {
			continue
		}
		var entry model.TOCEntry
		entry.Level = level
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			switch c.DataAtom {
			case atom.A, atom.Span:
				entry.Title = strings.TrimSpace(textContent(c))
				if c.DataAtom == atom.A {
					entry.Href = htmlAttr(c, "href")
				}
			case atom.Ol:
				entry.Children = parseNavList(c, level+1)
			}
		}
		if entry.Title != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func htmlAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key || a.Key == strings.TrimPrefix(key, "epub:") {
			return a.Val
		}
	}
	return ""
}

// ncxNavPoint mirrors one navPoint of the EPUB2 NCX navMap structure.
type ncxNavPoint struct {
	NavLabel struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxDocument struct {
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

// parseNCXTOC parses an EPUB2 .ncx document into a nested TableOfContents.
func parseNCXTOC(data []byte) *model.TableOfContents {
	doc, err := parseNCX(data)
	if err != nil {
		return model.NewTableOfContents()
	}
	toc := model.NewTableOfContents()
	toc.Entries = convertNavPoints(doc.NavMap.NavPoints, 1)
	return toc
}

func convertNavPoints(points []ncxNavPoint, level int) []model.TOCEntry {
	entries := make([]model.TOCEntry, 0, len(points))
	for _, p := range points {
		entry := model.TOCEntry{
			Title:    strings.TrimSpace(p.NavLabel.Text),
			Href:     p.Content.Src,
			Level:    level,
			Children: convertNavPoints(p.NavPoints, level+1),
		}
		if entry.Title != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
