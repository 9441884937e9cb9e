package htmlfmt

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omniparser-go/omniparser/internal/processors"
)

var contentCandidateSelectors = []string{
	"article", "main", "[role=main]", "#content", ".content",
	"#main", ".main", ".post", ".post-content", ".article-body",
}

var noiseSelectors = []string{
	"script", "style", "nav", "footer", "header", "aside",
	"form", "iframe", "noscript", ".comments", ".sidebar", ".advertisement",
}

// extractMainContent runs the goquery-scored primary extractor (readability-
// style candidate selection by total text length, comments stripped,
// images excluded from scoring) and falls back to the whole document when
// the primary result is too thin.
func extractMainContent(htmlSource string) (mainHTML string, usedFallback bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSource))
	if err != nil {
		return "", false, err
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	primary := selectPrimaryCandidate(doc)
	if primary != nil {
		if html, err := primary.Html(); err == nil && len(stripText(html)) >= 100 {
			return html, false, nil
		}
	}

	fallbackHTML, ferr := doc.Html()
	if ferr != nil {
		return "", true, ferr
	}
	if len(stripText(fallbackHTML)) < 50 {
		return "", true, fmt.Errorf("both primary and fallback extraction produced too little text")
	}
	return fallbackHTML, true, nil
}

// selectPrimaryCandidate picks the candidate selector match with the most
// text (trimmed length of all its text), a lightweight readability-style
// scoring pass.
func selectPrimaryCandidate(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0
	for _, selector := range contentCandidateSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := s.Text()
			if l := len(strings.TrimSpace(text)); l > bestLen {
				bestLen = l
				best = s
			}
		})
	}
	return best
}

func stripText(htmlFragment string) string {
	text, err := processors.HTMLToPlainText(htmlFragment)
	if err != nil {
		return ""
	}
	return text
}
