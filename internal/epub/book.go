// Package epub reads the EPUB container format: META-INF/container.xml
// resolution, OPF package-document parsing (manifest, spine, Dublin Core
// metadata), and TOC flattening (EPUB3 nav.xhtml or EPUB2 NCX). It is the
// low-level archive reader consumed by internal/parser/epubfmt's pipeline.
package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"path"

	"github.com/omniparser-go/omniparser/internal/model"
)

// Book is an opened EPUB archive: the parsed OPF package document plus
// direct access to every archive member's bytes by zip-absolute path.
type Book struct {
	zr       *zip.Reader
	opfDir   string
	Package  *opfDocument
	Metadata opfMetadata
}

// Open reads an EPUB archive from raw bytes and parses its container,
// package document, and Dublin Core metadata. It does not yet resolve the
// TOC; call TOC for that.
func Open(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	containerData, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return nil, errNoContainer
	}

	opfPath, err := findRootfile(containerData)
	if err != nil {
		return nil, err
	}

	opfData, err := readZipFile(zr, opfPath)
	if err != nil {
		return nil, errNoOPF
	}

	pkg, err := parsePackage(opfData)
	if err != nil {
		return nil, err
	}

	return &Book{
		zr:       zr,
		opfDir:   path.Dir(opfPath),
		Package:  pkg,
		Metadata: pkg.Metadata,
	}, nil
}

// TOC flattens the book's navigation document (EPUB3 nav.xhtml preferred,
// falling back to the EPUB2 NCX) into a nested TableOfContents whose hrefs
// resolve against the directory of the document they came from. Returns nil
// when neither is present or yields any entry, signaling the pipeline's
// spine fallback path.
func (b *Book) TOC() (*toc, error) {
	if nav := b.Package.navItem(); nav != nil {
		navPath := resolveHref(b.opfDir, nav.Href)
		data, err := readZipFile(b.zr, navPath)
		if err == nil {
			t := parseNavTOC(string(data))
			if !t.Empty() {
				return &toc{TableOfContents: t, hrefDir: path.Dir(navPath)}, nil
			}
		}
	}
	if ncx := b.Package.ncxItem(); ncx != nil {
		ncxPath := resolveHref(b.opfDir, ncx.Href)
		data, err := readZipFile(b.zr, ncxPath)
		if err == nil {
			t := parseNCXTOC(data)
			if !t.Empty() {
				return &toc{TableOfContents: t, hrefDir: path.Dir(ncxPath)}, nil
			}
		}
	}
	return nil, nil
}

// SpineHrefs returns the reading-order list of spine item paths, resolved
// to zip-absolute paths.
func (b *Book) SpineHrefs() []string {
	return b.Package.spineHrefs(b.opfDir)
}

// SpineItemIDs returns the manifest ids of spine items in reading order,
// parallel to SpineHrefs.
func (b *Book) SpineItemIDs() []string {
	ids := make([]string, 0, len(b.Package.Spine.Items))
	for _, ref := range b.Package.Spine.Items {
		ids = append(ids, ref.IDRef)
	}
	return ids
}

// ReadItem returns the raw bytes of an archive member at a zip-absolute
// path (as produced by SpineHrefs/resolveHref).
func (b *Book) ReadItem(zipPath string) ([]byte, error) {
	return readZipFile(b.zr, zipPath)
}

// ItemID returns the manifest id of the item at a zip-absolute path, or ""
// when no manifest entry resolves there.
func (b *Book) ItemID(zipPath string) string {
	for _, item := range b.Package.Manifest.Items {
		if resolveHref(b.opfDir, item.Href) == zipPath {
			return item.ID
		}
	}
	return ""
}

// ImageItems returns every manifest item whose media type is an image,
// alongside its zip-absolute path.
func (b *Book) ImageItems() []ImageItem {
	var out []ImageItem
	for _, item := range b.Package.Manifest.Items {
		if b.Package.isImage(item) {
			out = append(out, ImageItem{
				ID:       item.ID,
				ZipPath:  resolveHref(b.opfDir, item.Href),
				SubPath:  item.Href,
				MIMEType: item.MediaType,
			})
		}
	}
	return out
}

// ImageItem is one manifest entry whose media type is an image.
type ImageItem struct {
	ID       string
	ZipPath  string
	SubPath  string
	MIMEType string
}

// toc wraps model.TableOfContents with the directory its hrefs resolve
// against, so the pipeline can match TOC entries to spine items.
type toc struct {
	*model.TableOfContents
	hrefDir string
}

// ResolveHref resolves a TOC entry's href (which may carry a "#fragment")
// to a zip-absolute path. Alignment is file-level: fragments are dropped.
func (t *toc) ResolveHref(href string) (zipPath string) {
	return resolveHref(t.hrefDir, href)
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
