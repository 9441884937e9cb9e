// Package registry implements the parser registry and dispatcher: a
// process-wide extension→parser table with priority arbitration, and the
// entry point that routes a file path or URL to the right pipeline.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/omniparser-go/omniparser/internal/logging"
	"github.com/omniparser-go/omniparser/internal/parser"
)

var log = logging.For("registry")

// Entry is one registered parser's full registration record.
type Entry struct {
	Name        string
	Extensions  []string
	Parser      parser.Parser
	Supports    parser.SupportsFunc
	Description string
	Version     string
	Priority    int
}

// Registry is the process-wide parser table. The zero value is usable; New
// exists for tests that want an isolated instance.
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]*Entry
	byExt      map[string]*Entry
	supportsFn []*Entry
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Entry),
		byExt:  make(map[string]*Entry),
	}
}

// global is the process-wide singleton populated by RegisterBuiltinParsers
// at init and consulted by ParseDocument.
var global = New()

// Register adds or overwrites a parser entry. On a duplicate name the new
// entry overwrites the old one and a warning is logged. On an extension
// collision the higher-priority entry wins; ties keep the earlier
// registration order because the later entry does not overwrite when its
// priority is not strictly greater. Reassignment is applied and logged
// per-extension.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byName == nil {
		r.byName = make(map[string]*Entry)
	}
	if r.byExt == nil {
		r.byExt = make(map[string]*Entry)
	}

	if _, exists := r.byName[e.Name]; exists {
		log.Warn().Str("parser", e.Name).Msg("overwriting existing parser registration")
	}

	entry := e
	normalized := make([]string, 0, len(e.Extensions))
	for _, ext := range e.Extensions {
		normalized = append(normalized, normalizeExt(ext))
	}
	entry.Extensions = normalized
	r.byName[e.Name] = &entry

	for _, ext := range normalized {
		if existing, ok := r.byExt[ext]; ok && existing.Name != entry.Name {
			if existing.Priority >= entry.Priority {
				continue
			}
			log.Warn().Str("extension", ext).Str("from", existing.Name).Str("to", entry.Name).Msg("extension reassigned to higher-priority parser")
		}
		r.byExt[ext] = &entry
	}

	if entry.Supports != nil {
		r.supportsFn = append(r.supportsFn, &entry)
	}
}

// Unregister removes a parser by name, along with any extension bindings
// that still point at it.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byName, name)
	for ext, entry := range r.byExt {
		if entry.Name == name {
			delete(r.byExt, ext)
		}
	}
	kept := r.supportsFn[:0]
	for _, e := range r.supportsFn {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	r.supportsFn = kept
}

// GetParser normalizes path_or_ext to a lowercase dotted extension and
// returns the registered entry, if any.
func (r *Registry) GetParser(pathOrExt string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExt[normalizeExt(pathOrExt)]
	return e, ok
}

// IsSupported reports whether path's extension is registered, or any
// content-based supports(path) predicate claims it.
func (r *Registry) IsSupported(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.byExt[normalizeExt(path)]; ok {
		return true
	}
	for _, e := range r.supportsFn {
		if e.Supports(path, nil) {
			return true
		}
	}
	return false
}

// SupportedFormats returns the sorted list of registered dotted extensions.
func (r *Registry) SupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalizeExt(pathOrExt string) string {
	ext := pathOrExt
	if idx := strings.LastIndex(pathOrExt, "."); idx >= 0 {
		ext = pathOrExt[idx:]
	}
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Global returns the process-wide registry populated by
// RegisterBuiltinParsers.
func Global() *Registry { return global }
