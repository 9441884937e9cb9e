package processors

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var strippedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Nav: true,
	atom.Footer: true, atom.Aside: true, atom.Header: true,
}

// MarkdownConverterOptions toggles link and image preservation.
type MarkdownConverterOptions struct {
	PreserveLinks  bool
	PreserveImages bool
}

// DefaultMarkdownConverterOptions preserves both, the common case.
func DefaultMarkdownConverterOptions() MarkdownConverterOptions {
	return MarkdownConverterOptions{PreserveLinks: true, PreserveImages: true}
}

// HTMLToMarkdown tree-walks an HTML fragment/document and renders it as
// Markdown with a fixed tag mapping.
func HTMLToMarkdown(htmlSource string, opts MarkdownConverterOptions) (string, error) {
	node, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	c := &mdConverter{opts: opts}
	c.convert(node, &sb)
	out := excessBlankRE.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(out), nil
}

type mdConverter struct {
	opts     MarkdownConverterOptions
	listType []bool // true = ordered
	listIdx  []int
}

func (c *mdConverter) convert(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && strippedTags[n.DataAtom] {
		return
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}

	if n.Type != html.ElementNode {
		c.convertChildren(n, sb)
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom - atom.H1 + 1)
		sb.WriteString("\n" + strings.Repeat("#", level) + " ")
		c.convertChildren(n, sb)
		sb.WriteString("\n\n")
	case atom.P:
		c.convertChildren(n, sb)
		sb.WriteString("\n\n")
	case atom.Strong, atom.B:
		sb.WriteString("**")
		c.convertChildren(n, sb)
		sb.WriteString("**")
	case atom.Em, atom.I:
		sb.WriteString("*")
		c.convertChildren(n, sb)
		sb.WriteString("*")
	case atom.A:
		if !c.opts.PreserveLinks {
			c.convertChildren(n, sb)
			return
		}
		href := attr(n, "href")
		var text strings.Builder
		c.convertChildren(n, &text)
		fmt.Fprintf(sb, "[%s](%s)", text.String(), href)
	case atom.Img:
		if !c.opts.PreserveImages {
			return
		}
		src := attr(n, "src")
		alt := attr(n, "alt")
		fmt.Fprintf(sb, "![%s](%s)", alt, src)
	case atom.Ul:
		c.listType = append(c.listType, false)
		c.listIdx = append(c.listIdx, 0)
		sb.WriteString("\n")
		c.convertChildren(n, sb)
		c.popList()
		sb.WriteString("\n")
	case atom.Ol:
		c.listType = append(c.listType, true)
		c.listIdx = append(c.listIdx, 0)
		sb.WriteString("\n")
		c.convertChildren(n, sb)
		c.popList()
		sb.WriteString("\n")
	case atom.Li:
		c.writeListMarker(sb)
		c.convertChildren(n, sb)
		sb.WriteString("\n")
	case atom.Pre:
		sb.WriteString("\n```\n")
		c.convertChildren(n, sb)
		sb.WriteString("\n```\n")
	case atom.Code:
		sb.WriteString("`")
		c.convertChildren(n, sb)
		sb.WriteString("`")
	case atom.Blockquote:
		var inner strings.Builder
		c.convertChildren(n, &inner)
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	case atom.Table:
		c.convertTable(n, sb)
	case atom.Br:
		sb.WriteString("\n")
	case atom.Hr:
		sb.WriteString("\n---\n")
	default:
		c.convertChildren(n, sb)
	}
}

func (c *mdConverter) convertChildren(n *html.Node, sb *strings.Builder) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.convert(child, sb)
	}
}

func (c *mdConverter) writeListMarker(sb *strings.Builder) {
	if len(c.listType) == 0 {
		sb.WriteString("- ")
		return
	}
	top := len(c.listType) - 1
	if c.listType[top] {
		c.listIdx[top]++
		fmt.Fprintf(sb, "%d. ", c.listIdx[top])
	} else {
		sb.WriteString("- ")
	}
}

func (c *mdConverter) popList() {
	if len(c.listType) == 0 {
		return
	}
	c.listType = c.listType[:len(c.listType)-1]
	c.listIdx = c.listIdx[:len(c.listIdx)-1]
}

func (c *mdConverter) convertTable(n *html.Node, sb *strings.Builder) {
	var rows [][]string
	var walkRows func(*html.Node)
	walkRows = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.DataAtom == atom.Tr {
				var cells []string
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.DataAtom == atom.Td || cell.DataAtom == atom.Th {
						var cellText strings.Builder
						c.convertChildren(cell, &cellText)
						text := strings.ReplaceAll(cellText.String(), "\n", " ")
						text = strings.ReplaceAll(text, "|", "\\|")
						cells = append(cells, strings.TrimSpace(text))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			} else {
				walkRows(child)
			}
		}
	}
	walkRows(n)

	if len(rows) == 0 {
		return
	}
	sb.WriteString("\n")
	writeRow(sb, rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sb, sep)
	for _, row := range rows[1:] {
		writeRow(sb, row)
	}
	sb.WriteString("\n")
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
