package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/parser"
)

type stubParser struct{ name string }

func (s stubParser) Parse(content []byte, sourcePath string, opts parser.Options) (*model.Document, error) {
	return &model.Document{DocumentID: s.name}, nil
}
func (s stubParser) Name() string { return s.name }

func TestRegister_ExtensionNormalization(t *testing.T) {
	r := New()
	r.Register(Entry{Name: "foo", Extensions: []string{"FOO", ".Bar"}, Parser: stubParser{"foo"}})

	_, ok := r.GetParser("file.foo")
	assert.True(t, ok)
	_, ok = r.GetParser(".bar")
	assert.True(t, ok)
}

func TestRegister_DuplicateNameOverwrites(t *testing.T) {
	r := New()
	r.Register(Entry{Name: "foo", Extensions: []string{".foo"}, Parser: stubParser{"v1"}, Priority: 1})
	r.Register(Entry{Name: "foo", Extensions: []string{".foo"}, Parser: stubParser{"v2"}, Priority: 1})

	e, ok := r.GetParser(".foo")
	require.True(t, ok)
	assert.Equal(t, "v2", e.Parser.Name())
}

func TestRegister_PriorityArbitration(t *testing.T) {
	r := New()
	r.Register(Entry{Name: "low", Extensions: []string{".x"}, Parser: stubParser{"low"}, Priority: 1})
	r.Register(Entry{Name: "high", Extensions: []string{".x"}, Parser: stubParser{"high"}, Priority: 10})

	e, ok := r.GetParser(".x")
	require.True(t, ok)
	assert.Equal(t, "high", e.Parser.Name())

	// A later, lower-priority registration must not steal the extension.
	r.Register(Entry{Name: "lower", Extensions: []string{".x"}, Parser: stubParser{"lower"}, Priority: 0})
	e, ok = r.GetParser(".x")
	require.True(t, ok)
	assert.Equal(t, "high", e.Parser.Name())
}

func TestUnregister_RemovesExtensionBindings(t *testing.T) {
	r := New()
	r.Register(Entry{Name: "foo", Extensions: []string{".foo"}, Parser: stubParser{"foo"}})
	r.Unregister("foo")

	_, ok := r.GetParser(".foo")
	assert.False(t, ok)
	assert.False(t, r.IsSupported("x.foo"))
}

func TestIsSupported_SupportsPredicate(t *testing.T) {
	r := New()
	r.Register(Entry{
		Name: "magic", Parser: stubParser{"magic"},
		Supports: func(path string, content []byte) bool { return path == "weird" },
	})
	assert.True(t, r.IsSupported("weird"))
	assert.False(t, r.IsSupported("other"))
}

func TestSupportedFormats_Sorted(t *testing.T) {
	r := New()
	r.Register(Entry{Name: "z", Extensions: []string{".zzz"}, Parser: stubParser{"z"}})
	r.Register(Entry{Name: "a", Extensions: []string{".aaa"}, Parser: stubParser{"a"}})
	assert.Equal(t, []string{".aaa", ".zzz"}, r.SupportedFormats())
}

func TestParseDocument_UnsupportedFormat(t *testing.T) {
	_, err := ParseDocument("mystery.xyz123", parser.Options{})
	require.Error(t, err)
}

func TestParseDocument_FileRead(t *testing.T) {
	_, err := ParseDocument("does-not-exist.txt", parser.Options{})
	require.Error(t, err)
}

func TestIsFormatSupported_URLAlwaysTrue(t *testing.T) {
	assert.True(t, IsFormatSupported("https://example.com/a"))
	assert.True(t, IsFormatSupported("http://example.com/a"))
}

func TestGetSupportedFormats_IncludesBuiltins(t *testing.T) {
	formats := GetSupportedFormats()
	assert.Contains(t, formats, ".epub")
	assert.Contains(t, formats, ".pdf")
	assert.Contains(t, formats, ".docx")
	assert.Contains(t, formats, ".md")
}
