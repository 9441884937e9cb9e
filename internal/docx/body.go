package docx

import "encoding/xml"

// docBody is the raw word/document.xml shape: a body containing paragraphs
// and tables in document order. Namespace prefixes are ignored (matched by
// local name only), the common approach for OOXML consumers that don't
// need strict namespace discrimination.
type docBody struct {
	Body struct {
		Children []xmlNode `xml:",any"`
	} `xml:"body"`
}

// xmlNode captures an arbitrary child element (w:p or w:tbl) by local name
// so document order is preserved across both element kinds.
type xmlNode struct {
	XMLName xml.Name
	Para    *rawParagraph `xml:",omitempty"`
	Table   *rawTable     `xml:",omitempty"`
}

// UnmarshalXML dispatches on local element name so Children preserves
// document order for both <w:p> and <w:tbl>.
func (n *xmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	switch start.Name.Local {
	case "p":
		var p rawParagraph
		if err := d.DecodeElement(&p, &start); err != nil {
			return err
		}
		n.Para = &p
	case "tbl":
		var t rawTable
		if err := d.DecodeElement(&t, &start); err != nil {
			return err
		}
		n.Table = &t
	default:
		if err := d.Skip(); err != nil {
			return err
		}
	}
	return nil
}

type rawParagraph struct {
	PPr struct {
		PStyle struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
		NumPr struct {
			NumID struct {
				Val string `xml:"val,attr"`
			} `xml:"numId"`
		} `xml:"numPr"`
	} `xml:"pPr"`
	Children []paraNode `xml:",any"`
}

// paraNode captures one paragraph child (<w:r> or <w:hyperlink>) by local
// name, so a hyperlink embedded mid-sentence keeps its position among the
// surrounding runs instead of being regrouped after them.
type paraNode struct {
	Run       *rawRun
	Hyperlink *rawHyperlink
}

// UnmarshalXML dispatches on local element name, skipping paragraph
// children other than runs and hyperlinks.
func (n *paraNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	switch start.Name.Local {
	case "r":
		var r rawRun
		if err := d.DecodeElement(&r, &start); err != nil {
			return err
		}
		n.Run = &r
	case "hyperlink":
		var h rawHyperlink
		if err := d.DecodeElement(&h, &start); err != nil {
			return err
		}
		n.Hyperlink = &h
	default:
		if err := d.Skip(); err != nil {
			return err
		}
	}
	return nil
}

type rawRun struct {
	RPr struct {
		B *struct{} `xml:"b"`
		I *struct{} `xml:"i"`
	} `xml:"rPr"`
	Text []string `xml:"t"`
}

type rawHyperlink struct {
	RID  string   `xml:"id,attr"`
	Runs []rawRun `xml:"r"`
}

type rawTable struct {
	Rows []rawTableRow `xml:"tr"`
}

type rawTableRow struct {
	Cells []rawTableCell `xml:"tc"`
}

type rawTableCell struct {
	Paragraphs []rawParagraph `xml:"p"`
}

// Body is the document-order sequence of paragraphs and tables produced by
// convertBody, ready for the docxfmt pipeline's Markdown conversion.
type Body struct {
	Elements []BodyElement
}

// BodyElement is a tagged union over Paragraph/Table, preserving document
// order.
type BodyElement struct {
	Paragraph *Paragraph
	Table     *Table
}

// Paragraph is one <w:p>: an optional style id as written in <w:pStyle>
// (Document.Styles maps it to the styles.xml name), numbering presence (for
// list rendering), and its runs/hyperlinks in order.
type Paragraph struct {
	StyleName string
	Numbered  bool
	Runs      []Run
}

// Run is one formatted text run or hyperlink run.
type Run struct {
	Text       string
	Bold       bool
	Italic     bool
	Hyperlink  bool
	RelID      string
}

// Table is a grid of cell paragraph-text, document-order per row then
// column.
type Table struct {
	Rows [][]string
}

func convertBody(raw docBody) Body {
	var body Body
	for _, child := range raw.Body.Children {
		switch {
		case child.Para != nil:
			body.Elements = append(body.Elements, BodyElement{Paragraph: convertParagraph(*child.Para)})
		case child.Table != nil:
			body.Elements = append(body.Elements, BodyElement{Table: convertTable(*child.Table)})
		}
	}
	return body
}

func convertParagraph(p rawParagraph) *Paragraph {
	out := &Paragraph{
		StyleName: p.PPr.PStyle.Val,
		Numbered:  p.PPr.NumPr.NumID.Val != "",
	}
	for _, c := range p.Children {
		switch {
		case c.Run != nil:
			out.Runs = append(out.Runs, convertRun(*c.Run))
		case c.Hyperlink != nil:
			for _, r := range c.Hyperlink.Runs {
				run := convertRun(r)
				run.Hyperlink = true
				run.RelID = c.Hyperlink.RID
				out.Runs = append(out.Runs, run)
			}
		}
	}
	return out
}

func convertRun(r rawRun) Run {
	run := Run{
		Bold:   r.RPr.B != nil,
		Italic: r.RPr.I != nil,
	}
	for _, t := range r.Text {
		run.Text += t
	}
	return run
}

func convertTable(t rawTable) *Table {
	out := &Table{}
	for _, row := range t.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var text string
			for _, p := range cell.Paragraphs {
				para := convertParagraph(p)
				for _, r := range para.Runs {
					text += r.Text
				}
			}
			cells = append(cells, text)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
