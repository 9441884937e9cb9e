package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniparser-go/omniparser/internal/model"
)

func TestClassifyDataType(t *testing.T) {
	assert.Equal(t, model.QRDataURL, ClassifyDataType("https://example.com"))
	assert.Equal(t, model.QRDataURL, ClassifyDataType("HTTP://EXAMPLE.COM"))
	assert.Equal(t, model.QRDataVCard, ClassifyDataType("BEGIN:VCARD\nFN:Jane\nEND:VCARD"))
	assert.Equal(t, model.QRDataWifi, ClassifyDataType("WIFI:S:home;T:WPA;P:secret;;"))
	assert.Equal(t, model.QRDataText, ClassifyDataType("just some plain text"))
}

type stubFetcher struct{ fail bool }

func (s stubFetcher) Fetch(raw string) (string, string, []string, error) {
	if s.fail {
		return "", model.QRFetchPending, nil, assert.AnError
	}
	return "fetched: " + raw, model.QRFetchSuccess, nil, nil
}

func TestMerge_EmptyRefs(t *testing.T) {
	appendix, summary := Merge(nil, NoOpFetcher{})
	assert.Empty(t, appendix)
	assert.Nil(t, summary)
}

func TestMerge_NoOpFetcherMarksSkipped(t *testing.T) {
	refs := []model.QRCodeReference{
		{QRID: "qr_001", RawData: "https://example.com", DataType: model.QRDataURL, PageNumber: 1},
	}
	appendix, summary := Merge(refs, NoOpFetcher{})
	assert.Contains(t, appendix, "qr_001")
	assert.Contains(t, appendix, "https://example.com")
	require.Len(t, summary, 1)
	assert.Equal(t, model.QRFetchSkipped, summary[0]["fetch_status"])
	assert.Equal(t, model.QRFetchSkipped, refs[0].FetchStatus)
}

func TestMerge_FetcherSuccessAppendsContent(t *testing.T) {
	refs := []model.QRCodeReference{
		{QRID: "qr_001", RawData: "https://example.com", DataType: model.QRDataURL},
	}
	appendix, summary := Merge(refs, stubFetcher{})
	assert.Contains(t, appendix, "fetched: https://example.com")
	assert.Equal(t, model.QRFetchSuccess, summary[0]["fetch_status"])
}

func TestMerge_FetcherErrorMarksFailed(t *testing.T) {
	refs := []model.QRCodeReference{
		{QRID: "qr_001", RawData: "bad", DataType: model.QRDataText},
	}
	_, summary := Merge(refs, stubFetcher{fail: true})
	assert.Equal(t, model.QRFetchFailed, summary[0]["fetch_status"])
	assert.Equal(t, model.QRFetchFailed, refs[0].FetchStatus)
	assert.NotEmpty(t, refs[0].FetchNotes)
}

func TestMerge_SkipsAlreadyResolvedReferences(t *testing.T) {
	refs := []model.QRCodeReference{
		{QRID: "qr_001", RawData: "x", FetchStatus: model.QRFetchSuccess, FetchedContent: "existing"},
	}
	appendix, _ := Merge(refs, stubFetcher{fail: true})
	assert.Contains(t, appendix, "existing")
	assert.Equal(t, model.QRFetchSuccess, refs[0].FetchStatus)
}

func TestNoOpScanner_FindsNothing(t *testing.T) {
	refs, err := NoOp{}.Scan([]byte{1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Nil(t, refs)
}
