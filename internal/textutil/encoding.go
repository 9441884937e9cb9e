// Package textutil provides the encoding-detection/normalization cascade
// and word-counting utilities shared by every pipeline.
package textutil

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeResult reports which step of the cascade produced the text, for
// inclusion in ProcessingInfo.Warnings.
type DecodeResult struct {
	Text   string
	Method string // "utf8", "latin1"
}

// DecodeCascade implements the UTF-8 → latin-1 fallback cascade: try
// UTF-8 first; if the bytes are not valid UTF-8, decode them as Latin-1
// (ISO-8859-1), which never fails since every byte value is a valid
// Latin-1 code point. No other encoding is probed or detected.
func DecodeCascade(raw []byte) DecodeResult {
	if utf8.Valid(raw) {
		return DecodeResult{Text: string(raw), Method: "utf8"}
	}
	return DecodeResult{Text: decodeLatin1(raw), Method: "latin1"}
}

// DecodeLatin1 decodes raw bytes as ISO-8859-1 unconditionally, for
// callers that were told the encoding rather than detecting it.
func DecodeLatin1(raw []byte) DecodeResult {
	return DecodeResult{Text: decodeLatin1(raw), Method: "latin1"}
}

// decodeLatin1 transcodes raw bytes assumed to be ISO-8859-1 into UTF-8
// using x/text's charmap decoder.
func decodeLatin1(raw []byte) string {
	decoder := charmap.ISO8859_1.NewDecoder()
	out, err := decoder.Bytes(raw)
	if err != nil {
		// charmap's ISO-8859-1 decoder cannot fail (every byte maps to a
		// code point), but guard defensively.
		return string(raw)
	}
	return string(out)
}

// LooksLikelyBinary is a cheap non-text heuristic: any NUL byte, or more
// than 30% other control characters, in the first 512 bytes suggests
// non-text content.
func LooksLikelyBinary(raw []byte) bool {
	n := len(raw)
	if n > 512 {
		n = 512
	}
	if n == 0 {
		return false
	}
	control := 0
	for _, b := range raw[:n] {
		if b == 0 {
			return true
		}
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			control++
		}
	}
	return float64(control)/float64(n) > 0.3
}

// NormalizeLineEndings converts CRLF and lone CR to LF.
func NormalizeLineEndings(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
