package processors

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Br: true, atom.Hr: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true,
}

// HTMLToPlainText streams an HTML document (or fragment) into plain text,
// block-element aware: block boundaries become blank lines, inline content
// is joined with single spaces. Used by the EPUB pipeline to build spine
// text and by the HTML pipeline's fallback path.
func HTMLToPlainText(r string) (string, error) {
	node, err := html.Parse(strings.NewReader(r))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	walkText(node, &sb)
	return normalizeExtractedText(sb.String()), nil
}

func walkText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb)
	}
	if n.Type == html.ElementNode && blockElements[n.DataAtom] {
		sb.WriteString("\n\n")
	}
}

func normalizeExtractedText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	joined := strings.Join(lines, "\n")
	joined = excessBlankRE.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}
