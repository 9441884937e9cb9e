// Package docx reads the DOCX (OOXML WordprocessingML) container: the
// document body, core properties, style definitions, and relationships,
// via archive/zip and encoding/xml. It is the low-level reader consumed
// by internal/parser/docxfmt's pipeline.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"time"
)

// Document is an opened DOCX archive: its body XML, style map, core
// properties, and relationships, ready for document-order traversal.
type Document struct {
	zr          *zip.Reader
	Body        Body
	Styles      map[string]string // styleId -> display name
	CoreProps   CoreProperties
	Relationships map[string]string // r:id -> target
}

// Open reads a DOCX archive from raw bytes.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	doc := &Document{zr: zr}

	if raw, err := readZipFile(zr, "word/document.xml"); err == nil {
		var body docBody
		if err := xml.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		doc.Body = convertBody(body)
	}

	doc.Styles = map[string]string{}
	if raw, err := readZipFile(zr, "word/styles.xml"); err == nil {
		doc.Styles = parseStyles(raw)
	}

	if raw, err := readZipFile(zr, "docProps/core.xml"); err == nil {
		doc.CoreProps = parseCoreProperties(raw)
	}

	doc.Relationships = map[string]string{}
	if raw, err := readZipFile(zr, "word/_rels/document.xml.rels"); err == nil {
		doc.Relationships = parseRelationships(raw)
	}

	return doc, nil
}

// ImageRelationships returns every relationship whose target looks like a
// media file.
func (d *Document) ImageRelationships() map[string]string {
	out := map[string]string{}
	for id, target := range d.Relationships {
		if strings.Contains(target, "media/") || strings.Contains(strings.ToLower(target), "image") {
			out[id] = target
		}
	}
	return out
}

// ReadMedia returns the raw bytes of a media relationship target, resolved
// relative to the word/ directory.
func (d *Document) ReadMedia(target string) ([]byte, error) {
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "word/") {
		target = "word/" + target
	}
	return readZipFile(d.zr, target)
}

// CoreProperties mirrors docProps/core.xml's Dublin Core + extended fields.
type CoreProperties struct {
	Title            string
	Creator          string
	Subject          string
	Description      string
	Keywords         string
	LastModifiedBy   string
	Created          *time.Time
	Modified         *time.Time
}

type coreXML struct {
	Title          string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator        string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Subject        string `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Description    string `xml:"http://purl.org/dc/elements/1.1/ description"`
	Keywords       string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties keywords"`
	LastModifiedBy string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties lastModifiedBy"`
	Created        string `xml:"http://purl.org/dc/terms/ created"`
	Modified       string `xml:"http://purl.org/dc/terms/ modified"`
}

func parseCoreProperties(data []byte) CoreProperties {
	var raw coreXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return CoreProperties{}
	}
	cp := CoreProperties{
		Title:          strings.TrimSpace(raw.Title),
		Creator:        strings.TrimSpace(raw.Creator),
		Subject:        strings.TrimSpace(raw.Subject),
		Description:    strings.TrimSpace(raw.Description),
		Keywords:       strings.TrimSpace(raw.Keywords),
		LastModifiedBy: strings.TrimSpace(raw.LastModifiedBy),
	}
	if t, err := time.Parse(time.RFC3339, raw.Created); err == nil {
		cp.Created = &t
	}
	if t, err := time.Parse(time.RFC3339, raw.Modified); err == nil {
		cp.Modified = &t
	}
	return cp
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
		Type   string `xml:"Type,attr"`
	} `xml:"Relationship"`
}

func parseRelationships(data []byte) map[string]string {
	var raw relationshipsXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw.Relationships))
	for _, r := range raw.Relationships {
		out[r.ID] = r.Target
	}
	return out
}

type stylesXML struct {
	Styles []struct {
		StyleID string `xml:"styleId,attr"`
		Name    struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func parseStyles(data []byte) map[string]string {
	var raw stylesXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw.Styles))
	for _, s := range raw.Styles {
		out[s.StyleID] = s.Name.Val
	}
	return out
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
