// Package htmlfmt implements the HTML pipeline: fetch
// (URL or file) → main-content extraction (primary, goquery-scored, with a
// whole-document fallback) → Markdown conversion → metadata extraction →
// concurrent image download → chapter detection → Document.
package htmlfmt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
	"github.com/omniparser-go/omniparser/internal/textutil"
)

const (
	version = "1.0"
	wpm     = 225 // HTML reading speed
)

var log = logging.For("html")

// rateLimiter enforces a minimum inter-request delay across the requests of
// one Parse call (the page fetch and its image downloads); each Parse call
// builds its own. The lock is held across the delay decision and the sleep,
// which serializes requests sharing the limiter.
type rateLimiter struct {
	mu       sync.Mutex
	last     time.Time
	delaySec float64
}

func (r *rateLimiter) wait() {
	if r.delaySec <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	elapsed := time.Since(r.last).Seconds()
	if wait := r.delaySec - elapsed; wait > 0 {
		time.Sleep(time.Duration(wait * float64(time.Second)))
	}
	r.last = time.Now()
}

// Parser implements parser.Parser for HTML documents, fetched from a local
// file path or an http(s) URL.
type Parser struct {
	client *http.Client
}

// New constructs an HTML Parser with a default HTTP client.
func New() *Parser {
	return &Parser{client: &http.Client{}}
}

// Name returns the registry-facing parser name.
func (p *Parser) Name() string { return "html" }

// Parse runs the full HTML pipeline.
func (p *Parser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	start := time.Now()

	rl := &rateLimiter{delaySec: opts.RateLimitDelayOr()}

	var htmlSource string
	var sourceURL string
	if isHTTPURL(sourcePath) {
		sourceURL = sourcePath
		body, err := p.fetch(sourcePath, opts, rl)
		if err != nil {
			return nil, err
		}
		htmlSource = body
	} else {
		if len(content) == 0 {
			return nil, errs.NewValidation(sourcePath, "file is empty")
		}
		htmlSource = string(content)
	}

	info := model.NewProcessingInfo("html", version, opts.AsMap())

	mainHTML, usedFallback, err := extractMainContent(htmlSource)
	if err != nil {
		return nil, errs.NewParsing("html", err)
	}
	if usedFallback {
		msg := "primary content extractor returned too little text; used whole-document fallback"
		info.AddWarning(msg)
		log.Warn().Str("source", sourcePath).Msg(msg)
	}

	markdown, err := processors.HTMLToMarkdown(mainHTML, processors.MarkdownConverterOptions{PreserveLinks: true, PreserveImages: false})
	if err != nil {
		return nil, errs.NewParsing("html", err)
	}

	metadata, err := processors.ExtractHTMLMetadata(htmlSource, sourceURL)
	if err != nil {
		return nil, errs.NewParsing("html", err)
	}

	var images []model.ImageReference
	if opts.ShouldExtractImages() {
		imgOpts := opts
		if imgOpts.ImageOutputDir == "" {
			tmpDir, tmpErr := os.MkdirTemp("", "omniparser-html-images-*")
			if tmpErr != nil {
				info.AddWarning(fmt.Sprintf("cannot create temporary image dir: %v", tmpErr))
			} else {
				imgOpts.ImageOutputDir = tmpDir
				info.AddWarning(fmt.Sprintf("no image output dir configured; images saved under %s", tmpDir))
			}
		}
		if imgOpts.ImageOutputDir != "" {
			images, info.Warnings = p.extractImages(htmlSource, sourceURL, imgOpts, rl, info.Warnings)
		}
	}

	cleaner := processors.NewTextCleaner(opts.CleanerConfigPath)
	if opts.ShouldCleanText() {
		markdown = cleaner.Clean(markdown)
	}

	var chapters []model.Chapter
	if opts.ShouldDetectChapters() {
		minLevel, maxLevel := opts.ChapterLevelBand()
		chapters = processors.DetectChapters(markdown, minLevel, maxLevel)
	} else {
		chapters = []model.Chapter{}
	}

	wordCount := textutil.CountWords(markdown)
	doc := &model.Document{
		DocumentID:           model.NewDocumentID(),
		Content:              markdown,
		Chapters:             chapters,
		Images:               images,
		Metadata:             metadata,
		ProcessingInfo:       info,
		WordCount:            wordCount,
		EstimatedReadingTime: model.ReadingTime(wordCount, wpm),
	}
	doc.ProcessingInfo.Finish(start)
	return doc, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// fetch performs a single rate-limited GET.
func (p *Parser) fetch(rawURL string, opts parser.Options, rl *rateLimiter) (string, error) {
	rl.wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutOr())*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errs.NewNetwork(rawURL, err)
	}
	req.Header.Set("User-Agent", opts.UserAgentOr())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errs.NewNetwork(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.NewNetwork(rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.NewNetwork(rawURL, err)
	}
	return string(body), nil
}

