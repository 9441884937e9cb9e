// Package config loads the external pattern table used by the text
// cleaner.
package config

import (
	_ "embed"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omniparser-go/omniparser/internal/logging"
)

var log = logging.For("config")

//go:embed cleaning_patterns.yaml
var defaultPatternsYAML []byte

// PatternEntry is one {pattern, flags?, replacement?, description?} row.
type PatternEntry struct {
	Pattern     string `yaml:"pattern"`
	Flags       string `yaml:"flags,omitempty"`
	Replacement string `yaml:"replacement,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// PatternFile is the YAML document's top-level shape.
type PatternFile struct {
	RemovalPatterns        []PatternEntry `yaml:"removal_patterns"`
	TransformationPatterns []PatternEntry `yaml:"transformation_patterns"`
}

// CompiledPattern pairs a regexp with its transformation (empty for removal).
type CompiledPattern struct {
	Regexp      *regexp.Regexp
	Replacement string
	Description string
}

// CompiledPatterns is the process-wide cache produced by Load.
type CompiledPatterns struct {
	Removal        []CompiledPattern
	Transformation []CompiledPattern
}

var (
	cacheMu sync.Mutex
	cached  *CompiledPatterns
)

// Load returns the process-wide compiled pattern cache, loading from path
// (or the embedded default when path is empty) on first call. On parse
// failure it logs a warning and proceeds with empty pattern lists.
func Load(path string) *CompiledPatterns {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached != nil {
		return cached
	}
	cached = loadUncached(path)
	return cached
}

// Reset clears the process-wide cache; used by tests.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cached = nil
}

func loadUncached(path string) *CompiledPatterns {
	raw := defaultPatternsYAML
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("cleaning pattern config unreadable, using empty pattern set")
			return &CompiledPatterns{}
		}
		raw = data
	}

	var file PatternFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		log.Warn().Err(err).Msg("cleaning pattern config unparseable, using empty pattern set")
		return &CompiledPatterns{}
	}

	return &CompiledPatterns{
		Removal:        compileAll(file.RemovalPatterns),
		Transformation: compileAll(file.TransformationPatterns),
	}
}

func compileAll(entries []PatternEntry) []CompiledPattern {
	out := make([]CompiledPattern, 0, len(entries))
	for _, e := range entries {
		pattern := e.Pattern
		if e.Flags != "" {
			pattern = "(?" + goFlags(e.Flags) + ")" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			log.Warn().Err(err).Str("pattern", e.Pattern).Msg("skipping unparseable cleaning pattern")
			continue
		}
		out = append(out, CompiledPattern{Regexp: re, Replacement: e.Replacement, Description: e.Description})
	}
	return out
}

// goFlags maps the config file's human flag names to Go regexp inline flags.
func goFlags(flags string) string {
	switch flags {
	case "multiline":
		return "m"
	case "dotall":
		return "s"
	case "multiline,dotall", "dotall,multiline":
		return "ms"
	case "ignorecase":
		return "i"
	default:
		return "m"
	}
}
