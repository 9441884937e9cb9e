package epub

import (
	"encoding/xml"
	"path"
	"strings"
)

// manifestItem is one <item> entry in the OPF manifest: an id, a path
// relative to the OPF's directory, and a media type.
type manifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// spineItemRef is one <itemref> entry, referencing a manifest item by id.
type spineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// opfDocument is the subset of the OPF package document this reader needs:
// Dublin Core metadata (opfMetadata, already defined in metadata.go),
// manifest, and spine.
type opfDocument struct {
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc   string         `xml:"toc,attr"` // NCX manifest id, EPUB2
		Items []spineItemRef `xml:"itemref"`
	} `xml:"spine"`
}

// parsePackage parses an OPF package document.
func parsePackage(data []byte) (*opfDocument, error) {
	var doc opfDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// itemByID returns the manifest item with the given id, or nil, by a linear
// scan of the manifest.
func (d *opfDocument) itemByID(id string) *manifestItem {
	for i := range d.Manifest.Items {
		if d.Manifest.Items[i].ID == id {
			return &d.Manifest.Items[i]
		}
	}
	return nil
}

func (d *opfDocument) navItem() *manifestItem {
	for i := range d.Manifest.Items {
		if strings.Contains(d.Manifest.Items[i].Properties, "nav") {
			return &d.Manifest.Items[i]
		}
	}
	return nil
}

func (d *opfDocument) ncxItem() *manifestItem {
	if d.Spine.Toc != "" {
		if it := d.itemByID(d.Spine.Toc); it != nil {
			return it
		}
	}
	for i := range d.Manifest.Items {
		if strings.Contains(d.Manifest.Items[i].MediaType, "ncx") {
			return &d.Manifest.Items[i]
		}
	}
	return nil
}

// spineHrefs resolves the spine's itemref order into manifest hrefs, joined
// against opfDir so callers can look them up in the zip archive directly.
func (d *opfDocument) spineHrefs(opfDir string) []string {
	hrefs := make([]string, 0, len(d.Spine.Items))
	for _, ref := range d.Spine.Items {
		item := d.itemByID(ref.IDRef)
		if item == nil {
			continue
		}
		hrefs = append(hrefs, resolveHref(opfDir, item.Href))
	}
	return hrefs
}

// resolveHref joins an OPF-relative href against the OPF's containing
// directory to produce a zip-archive-absolute path, cleaning "." and "..".
func resolveHref(dir, href string) string {
	href = strings.SplitN(href, "#", 2)[0]
	if dir == "" || dir == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(dir, href))
}

func (d *opfDocument) isImage(item manifestItem) bool {
	return strings.HasPrefix(item.MediaType, "image/")
}
