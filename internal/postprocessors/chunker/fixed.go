package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// DefaultWindow is the default fixed-size window in bytes.
const DefaultWindow = 1024

// DefaultOverlap is the default overlap between fixed-size windows in bytes.
const DefaultOverlap = 256

// FixedSize splits text into windows of at most window bytes, each
// starting overlap bytes before the end of the previous one.
//
// A window that does not reach the end of text is cut after its last space
// when that space lies past the window midpoint. A window never ends inside
// a multi-byte character: it is shrunk by up to three bytes until it decodes,
// or grown to the end of the character when the window is narrower than it.
// Only text that is not valid UTF-8 at all is decoded lossily. Every
// window starts strictly after the previous one, whatever the overlap.
func FixedSize(text string, window, overlap int) []domain.Span {
	if text == "" {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if overlap < 0 {
		overlap = 0
	}

	n := len(text)
	spans := make([]domain.Span, 0, n/max(1, window-overlap)+1)

	start := 0
	for start < n {
		end := min(start+window, n)
		if end < n {
			if i := strings.LastIndexByte(text[start:end], ' '); i > window/2 {
				end = start + i + 1
			}
		}

		var chunk string
		chunk, end = decodeWindow(text, start, end)
		spans = append(spans, domain.Span{Text: chunk, Offset: start, Length: len(chunk)})

		if end >= n {
			break
		}

		next := end - overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return spans
}

// decodeWindow returns text[start:end], moving end back by at most
// utf8.UTFMax-1 bytes to avoid a split character. A window too narrow to
// hold the character it starts with is extended forward to the next rune
// boundary instead. If no clean cut exists either way the window is decoded
// lossily and end is left unchanged.
func decodeWindow(text string, start, end int) (string, int) {
	for k := 0; k < utf8.UTFMax && end-k > start; k++ {
		if s := text[start : end-k]; utf8.ValidString(s) {
			return s, end - k
		}
	}
	for k := 1; k < utf8.UTFMax && end+k <= len(text); k++ {
		if s := text[start : end+k]; utf8.ValidString(s) {
			return s, end + k
		}
	}
	return strings.ToValidUTF8(text[start:end], string(utf8.RuneError)), end
}
