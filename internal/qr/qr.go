// Package qr defines the QR-detection and fetch-merge boundary used by
// the PDF pipeline's optional QR scan. Decoding and URL fetching are both
// modeled as small interfaces: an embedding application supplies real
// implementations, and the core ships no-op defaults.
package qr

import (
	"fmt"
	"strings"

	"github.com/omniparser-go/omniparser/internal/model"
)

// Scanner detects QR codes within a rendered page image. A real
// implementation is supplied by an embedding application; the core ships
// only NoOp, which finds nothing.
type Scanner interface {
	Scan(pageImage []byte, page int) ([]model.QRCodeReference, error)
}

// NoOp is the default Scanner: it finds no QR codes.
type NoOp struct{}

// Scan always returns an empty slice without error.
func (NoOp) Scan(_ []byte, _ int) ([]model.QRCodeReference, error) {
	return nil, nil
}

// Fetcher resolves QRCodeReference.RawData (typically a URL) to fetched
// content, a status, and any notes describing how the fetch went.
type Fetcher interface {
	Fetch(raw string) (content string, status string, notes []string, err error)
}

// NoOpFetcher marks every reference as skipped without attempting a fetch,
// used when QR detection is enabled but no fetcher is configured.
type NoOpFetcher struct{}

// Fetch always reports FetchStatus "skipped".
func (NoOpFetcher) Fetch(_ string) (string, string, []string, error) {
	return "", model.QRFetchSkipped, []string{"no QR fetcher configured"}, nil
}

// ClassifyDataType guesses a QRCodeReference.DataType from raw decoded
// content.
func ClassifyDataType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return model.QRDataURL
	case strings.HasPrefix(trimmed, "BEGIN:VCARD"):
		return model.QRDataVCard
	case strings.HasPrefix(trimmed, "WIFI:"):
		return model.QRDataWifi
	default:
		return model.QRDataText
	}
}

// Merge runs the fetcher over every reference whose status is still
// "pending", mutating it in place, and returns a Markdown section to
// append to Document.Content plus the qr_codes custom-field summary.
func Merge(refs []model.QRCodeReference, fetcher Fetcher) (appendix string, summary []map[string]any) {
	if len(refs) == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString("\n\n## QR Codes\n\n")
	for i := range refs {
		r := &refs[i]
		if r.FetchStatus == "" || r.FetchStatus == model.QRFetchPending {
			content, status, notes, err := fetcher.Fetch(r.RawData)
			r.FetchedContent = content
			r.FetchStatus = status
			r.FetchNotes = notes
			if err != nil {
				r.FetchStatus = model.QRFetchFailed
				r.FetchNotes = append(r.FetchNotes, err.Error())
			}
		}
		fmt.Fprintf(&sb, "**%s** (page %d, %s): %s\n\n", r.QRID, r.PageNumber, r.DataType, r.RawData)
		if r.FetchedContent != "" {
			sb.WriteString(r.FetchedContent)
			sb.WriteString("\n\n")
		}
		summary = append(summary, map[string]any{
			"qr_id":        r.QRID,
			"data_type":    r.DataType,
			"page_number":  r.PageNumber,
			"fetch_status": r.FetchStatus,
		})
	}
	return sb.String(), summary
}
