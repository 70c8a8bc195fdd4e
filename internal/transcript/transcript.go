// Package transcript handles raw conversation text: splitting pasted blobs
// into individual transcripts and producing the truncated snippets kept on
// exported rows.
package transcript

import (
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates transcripts in a batch paste: a line with
// exactly five dashes.
const DefaultDelimiter = "\n-----\n"

const (
	snippetRunes  = 500
	snippetMarker = "..."
)

// Split divides a multi-transcript blob into an ordered sequence of trimmed,
// non-empty transcripts. Segments that are empty after trimming are dropped,
// which silently absorbs leading/trailing delimiters and blank runs. There is
// no escaping mechanism: a transcript containing the delimiter string cannot
// be represented.
func Split(blob, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	parts := strings.Split(blob, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Snippet returns the first 500 characters of text, with a truncation marker
// appended when the text is longer. Boundaries count runes so multi-byte
// characters are never cut in half.
func Snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetRunes]) + snippetMarker
}
