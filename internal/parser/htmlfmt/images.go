package htmlfmt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
)

// extractImages resolves every <img src> against the base URL, skips data:
// URIs and non-HTTP schemes, and downloads the rest through a bounded
// worker pool. Failures are logged and skipped; they never fail the
// whole parse.
func (p *Parser) extractImages(htmlSource, baseURL string, opts parser.Options, rl *rateLimiter, warnings []string) ([]model.ImageReference, []string) {
	srcs := collectImgSrcs(htmlSource)
	if len(srcs) == 0 {
		return nil, warnings
	}

	type task struct {
		index int
		src   string
	}
	tasks := make([]task, 0, len(srcs))
	for i, src := range srcs {
		resolved := resolveImageURL(baseURL, src)
		if resolved == "" {
			continue
		}
		tasks = append(tasks, task{index: i, src: resolved})
	}

	imgOpts := processors.ImageExtractorOptions{
		MaxSizeBytes: 50 * 1024 * 1024,
		MinDimension: 100,
		OutputDir:    opts.ImageOutputDir,
	}

	workers := opts.MaxImageWorkersOr()
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var results []model.ImageReference

	for _, t := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(t task) {
			defer wg.Done()
			defer func() { <-sem }()

			rl.wait()
			data, err := p.downloadImage(t.src, opts)
			if err != nil {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("image %s failed: %v", t.src, err))
				mu.Unlock()
				return
			}

			absPath, format, err := processors.SaveImage(data, "img", t.index+1, "", imgOpts)
			if err != nil {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("image %s failed validation: %v", t.src, err))
				mu.Unlock()
				return
			}
			w, h, _ := processors.ProbeDimensions(data)

			mu.Lock()
			results = append(results, model.ImageReference{
				ImageID:  fmt.Sprintf("img_%03d", t.index+1),
				Position: t.index * 100,
				FilePath: absPath,
				Width:    w,
				Height:   h,
				Format:   format,
			})
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].ImageID < results[j].ImageID })
	return results, warnings
}

func (p *Parser) downloadImage(src string, opts parser.Options) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutOr())*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", opts.UserAgentOr())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// collectImgSrcs walks the original HTML (not the extracted main-content
// subset) collecting every <img src> in document order.
func collectImgSrcs(htmlSource string) []string {
	node, err := html.Parse(strings.NewReader(htmlSource))
	if err != nil {
		return nil
	}
	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			for _, a := range n.Attr {
				if a.Key == "src" && a.Val != "" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return srcs
}

// resolveImageURL resolves an <img> src against the base URL: absolute
// URLs pass through, protocol-relative URLs get an https: prefix, relative
// paths are resolved against the base, and data:/non-HTTP schemes are
// skipped.
func resolveImageURL(base, src string) string {
	if strings.HasPrefix(src, "data:") {
		return ""
	}
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}

	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return ""
		}
		return src
	}

	if base == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
