package pdffmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spansFixture() []span {
	return []span{
		{text: "Alpha", fontSize: 24, bold: true, page: 1, position: 0},
		{text: "body one two three", fontSize: 12, bold: false, page: 1, position: 6},
		{text: "body four five six", fontSize: 12, bold: false, page: 1, position: 26},
		{text: "Beta", fontSize: 18, bold: false, page: 1, position: 46},
		{text: "more body text here", fontSize: 12, bold: false, page: 1, position: 51},
	}
}

func TestFontStats(t *testing.T) {
	mean, stddev := fontStats(spansFixture())
	assert.InDelta(t, 15.6, mean, 0.1)
	assert.Greater(t, stddev, 0.0)
}

func TestHeadingCandidates_FontStatisticsThreshold(t *testing.T) {
	spans := spansFixture()
	candidates := headingCandidates(spans)
	require.NotEmpty(t, candidates)

	var titles []string
	for _, c := range candidates {
		titles = append(titles, c.text)
	}
	assert.Contains(t, titles, "Alpha")
}

func TestHeadingCandidates_RejectsOverlongText(t *testing.T) {
	var words string
	for i := 0; i < maxHeadingWords+5; i++ {
		words += "word "
	}
	spans := []span{
		{text: "normal", fontSize: 12},
		{text: words, fontSize: 30, bold: true},
	}
	candidates := headingCandidates(spans)
	for _, c := range candidates {
		assert.NotEqual(t, words, c.text)
	}
}

func TestBuildSizeRank_DescendingOrder(t *testing.T) {
	spans := []span{{fontSize: 12}, {fontSize: 24}, {fontSize: 18}, {fontSize: 24}}
	rank := buildSizeRank(spans)
	assert.Equal(t, 0, rank[24])
	assert.Equal(t, 1, rank[18])
	assert.Equal(t, 2, rank[12])
}

func TestHeadingLevel_CappedAtSix(t *testing.T) {
	rank := map[float64]int{10: 0, 9: 1, 8: 2, 7: 3, 6: 4, 5: 5, 4: 6, 3: 7}
	assert.Equal(t, 1, headingLevel(10, rank))
	assert.Equal(t, 6, headingLevel(3, rank))
	assert.Equal(t, 3, headingLevel(999, rank))
}

func TestInjectAt_WindowMatch(t *testing.T) {
	text := "some text Alpha more text"
	out := injectAt(text, 10, "Alpha", "\n# Alpha\n")
	assert.Equal(t, "some text \n# Alpha\n more text", out)
}

func TestInjectAt_FallbackSubstringMatch(t *testing.T) {
	text := "prefix " + repeat("x", 300) + "Heading suffix"
	out := injectAt(text, 0, "Heading", "[H]")
	assert.Contains(t, out, "[H]")
}

func TestInjectAt_NoMatchLeavesTextUnchanged(t *testing.T) {
	text := "nothing to see here"
	out := injectAt(text, 5, "missing", "[X]")
	assert.Equal(t, text, out)
}

func TestInjectHeadings_DescendingOrderPreventsDrift(t *testing.T) {
	spans := []span{
		{text: "Intro", fontSize: 24, bold: true, page: 1, position: 0},
		{text: "first paragraph body text here now", fontSize: 12, page: 1, position: 6},
		{text: "Details", fontSize: 24, bold: true, page: 1, position: 42},
		{text: "second paragraph body text here now", fontSize: 12, page: 1, position: 50},
	}
	out := injectHeadings(spans)
	assert.Contains(t, out, "# Intro")
	assert.Contains(t, out, "# Details")
}

func TestIsScanned_EmptyDocument(t *testing.T) {
	assert.True(t, isScanned(nil, 0))
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
