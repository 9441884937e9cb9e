package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCascade_UTF8(t *testing.T) {
	r := DecodeCascade([]byte("hello world"))
	assert.Equal(t, "utf8", r.Method)
	assert.Equal(t, "hello world", r.Text)
}

func TestDecodeCascade_Latin1Fallback(t *testing.T) {
	// 0xE9 is "é" in Latin-1 but not valid standalone UTF-8.
	raw := []byte{'c', 'a', 'f', 0xE9}
	r := DecodeCascade(raw)
	assert.Equal(t, "latin1", r.Method)
	assert.Equal(t, "café", r.Text)
}

func TestLooksLikelyBinary(t *testing.T) {
	assert.True(t, LooksLikelyBinary([]byte{0x00, 'a', 'b'}))
	assert.False(t, LooksLikelyBinary([]byte("plain ascii text")))
	assert.False(t, LooksLikelyBinary(nil))
}

func TestNormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeLineEndings("a\r\nb\rc\n"))
}

func TestCountWhitespaceTokens(t *testing.T) {
	assert.Equal(t, 0, CountWhitespaceTokens("   "))
	assert.Equal(t, 4, CountWhitespaceTokens("hello world  foo\tbar"))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 2, CountWords("hello, world!"))
	assert.Equal(t, 0, CountWords("   ...  "))
	assert.Equal(t, 3, CountWords("one two three"))
}

func TestCountMarkdownAwareWords(t *testing.T) {
	assert.Equal(t, 2, CountMarkdownAwareWords("# **bold** text"))
	assert.Equal(t, 2, CountMarkdownAwareWords("| a | b |"))
}
