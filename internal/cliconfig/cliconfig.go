// Package cliconfig loads process-wide defaults for the parser.Options
// table from an optional YAML config file, read with spf13/viper. It never
// overrides explicit per-invocation flags; it only supplies the baseline
// that flag parsing starts from.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/omniparser-go/omniparser/internal/parser"
)

// Config holds the raw viper-backed settings; Options builds the
// parser.Options defaults from them.
type Config struct {
	v *viper.Viper
}

// Load reads configFile if set, else "$HOME/.omniparser.yaml" if it
// exists. A missing file is not an error: defaults apply.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OMNIPARSER")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
		return &Config{v: v}, nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidate := filepath.Join(home, ".omniparser.yaml")
		if _, statErr := os.Stat(candidate); statErr == nil {
			v.SetConfigFile(candidate)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", candidate, err)
			}
		}
	}

	return &Config{v: v}, nil
}

// Options builds a parser.Options populated from whatever keys the config
// file set. Keys absent from the file leave
// the corresponding Options field at its zero value, so each pipeline's
// own *Or() resolver default still applies.
func (c *Config) Options() parser.Options {
	v := c.v
	opts := parser.Options{}

	if v.IsSet("extract_images") {
		b := v.GetBool("extract_images")
		opts.ExtractImages = &b
	}
	opts.ImageOutputDir = v.GetString("image_output_dir")
	if v.IsSet("clean_text") {
		b := v.GetBool("clean_text")
		opts.CleanText = &b
	}
	opts.CleanerConfigPath = v.GetString("cleaner_config_path")
	if v.IsSet("detect_chapters") {
		b := v.GetBool("detect_chapters")
		opts.DetectChapters = &b
	}
	if v.IsSet("min_chapter_length") {
		n := v.GetInt("min_chapter_length")
		opts.MinChapterLength = &n
	}
	if v.IsSet("min_chapter_level") {
		n := v.GetInt("min_chapter_level")
		opts.MinChapterLevel = &n
	}
	if v.IsSet("max_chapter_level") {
		n := v.GetInt("max_chapter_level")
		opts.MaxChapterLevel = &n
	}
	if v.IsSet("use_toc") {
		b := v.GetBool("use_toc")
		opts.UseTOC = &b
	}
	if v.IsSet("use_spine_fallback") {
		b := v.GetBool("use_spine_fallback")
		opts.UseSpineFallback = &b
	}
	if v.IsSet("enable_lists") {
		b := v.GetBool("enable_lists")
		opts.EnableLists = &b
	}
	if v.IsSet("enable_hyperlinks") {
		b := v.GetBool("enable_hyperlinks")
		opts.EnableHyperlinks = &b
	}
	if v.IsSet("use_ocr") {
		b := v.GetBool("use_ocr")
		opts.UseOCR = &b
	}
	opts.OCRLanguage = v.GetString("ocr_language")
	if v.IsSet("ocr_timeout") {
		n := v.GetInt("ocr_timeout")
		opts.OCRTimeoutS = &n
	}
	if v.IsSet("ocr_dpi") {
		n := v.GetInt("ocr_dpi")
		opts.OCRDPI = &n
	}
	if v.IsSet("max_pages") {
		n := v.GetInt("max_pages")
		opts.MaxPages = &n
	}
	if v.IsSet("extract_tables") {
		b := v.GetBool("extract_tables")
		opts.ExtractTables = &b
	}
	if v.IsSet("detect_qr") {
		b := v.GetBool("detect_qr")
		opts.DetectQR = &b
	}
	if v.IsSet("timeout") {
		n := v.GetInt("timeout")
		opts.Timeout = &n
	}
	if v.IsSet("rate_limit_delay") {
		f := v.GetFloat64("rate_limit_delay")
		opts.RateLimitDelay = &f
	}
	opts.UserAgent = v.GetString("user_agent")
	if v.IsSet("max_image_workers") {
		n := v.GetInt("max_image_workers")
		opts.MaxImageWorkers = &n
	}
	if v.IsSet("extract_frontmatter") {
		b := v.GetBool("extract_frontmatter")
		opts.ExtractFrontmatter = &b
	}
	if v.IsSet("normalize_headings") {
		b := v.GetBool("normalize_headings")
		opts.NormalizeHeadings = &b
	}
	if v.IsSet("auto_detect_encoding") {
		b := v.GetBool("auto_detect_encoding")
		opts.AutoDetectEncoding = &b
	}
	opts.Encoding = v.GetString("encoding")

	return opts
}
