package textutil

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// CountWhitespaceTokens counts words by naive whitespace splitting; the
// chapter detector counts a chapter's words this way.
func CountWhitespaceTokens(s string) int {
	return len(strings.Fields(s))
}

// CountWords performs Unicode-aware word segmentation via the UAX#29 word
// boundary algorithm, counting only segments that contain at least one
// letter or number (UAX#29 also yields whitespace/punctuation as their own
// segments). Used wherever a pipeline needs an accurate word count across
// scripts that don't tokenize cleanly on ASCII whitespace.
func CountWords(s string) int {
	count := 0
	seg := words.FromString(s)
	for seg.Next() {
		if isWordlike(seg.Value()) {
			count++
		}
	}
	return count
}

func isWordlike(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// CountMarkdownAwareWords strips common Markdown syntax (heading marks,
// emphasis runs, table pipes, escaped characters) before counting.
func CountMarkdownAwareWords(markdown string) int {
	replacer := strings.NewReplacer(
		"#", "",
		"*", "",
		"_", "",
		"`", "",
		"|", " ",
		"\\", "",
	)
	return CountWords(replacer.Replace(markdown))
}
