package pdffmt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/processors"
)

// extractImages writes the source PDF to a temp file (pdfcpu's extraction
// API is file-based), extracts embedded images into opts.ImageOutputDir via
// pdfcpu, validates/probes each with the shared image utility (min
// dimension 100px), and assigns page*1000+index positions
// to preserve reading order.
func extractImages(sourcePath string, opts parser.Options, warnings []string) ([]model.ImageReference, []string) {
	if err := os.MkdirAll(opts.ImageOutputDir, 0o755); err != nil {
		return nil, append(warnings, fmt.Sprintf("cannot create image output dir: %v", err))
	}

	stagingDir, err := os.MkdirTemp("", "omniparser-pdf-images-*")
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cannot create staging dir for image extraction: %v", err))
	}
	defer os.RemoveAll(stagingDir)

	if err := pdfcpuapi.ExtractImagesFile(sourcePath, stagingDir, nil, nil); err != nil {
		return nil, append(warnings, fmt.Sprintf("image extraction failed: %v", err))
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cannot read staged images: %v", err))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	imgOpts := processors.ImageExtractorOptions{
		MaxSizeBytes: 50 * 1024 * 1024,
		MinDimension: 100,
		OutputDir:    opts.ImageOutputDir,
	}

	var images []model.ImageReference
	for i, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(stagingDir, entry.Name()))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("staged image %s unreadable: %v", entry.Name(), err))
			continue
		}
		page := pageFromStagedName(entry.Name(), i+1)
		absPath, format, err := processors.SaveImage(data, "img", i+1, "", imgOpts)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("image %s failed validation: %v", entry.Name(), err))
			continue
		}
		w, h, _ := processors.ProbeDimensions(data)
		images = append(images, model.ImageReference{
			ImageID:  fmt.Sprintf("img_%03d", i+1),
			Position: page*1000 + i,
			FilePath: absPath,
			Width:    w,
			Height:   h,
			Format:   format,
		})
	}
	return images, warnings
}

// pageFromStagedName best-effort parses pdfcpu's page-numbered staged
// filenames (<basename>_<page>_<imgname>.<ext>); falls back to idx when
// no segment parses as a page number.
func pageFromStagedName(name string, idx int) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, part := range strings.Split(base, "_") {
		if page, err := strconv.Atoi(part); err == nil && page > 0 {
			return page
		}
	}
	return idx
}
