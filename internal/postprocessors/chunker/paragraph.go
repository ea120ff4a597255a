package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

// DefaultMaxSize is the default paragraph chunk size in bytes.
const DefaultMaxSize = 1024

// blankLine matches a paragraph boundary: a newline, optional whitespace,
// and another newline.
var blankLine = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits text on blank lines and greedily packs consecutive
// paragraphs into chunks of at most maxSize bytes. A chunk is a contiguous
// slice of text, so the separators between packed paragraphs are kept.
// A paragraph longer than maxSize on its own becomes one oversized chunk.
func Paragraphs(text string, maxSize int) []domain.Span {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	var spans []domain.Span
	curStart, curEnd := -1, -1

	flush := func() {
		if curStart < 0 {
			return
		}
		s := text[curStart:curEnd]
		spans = append(spans, domain.Span{Text: s, Offset: curStart, Length: len(s)})
		curStart, curEnd = -1, -1
	}

	for _, p := range paragraphBounds(text) {
		if curStart >= 0 && p[1]-curStart > maxSize {
			flush()
		}
		if curStart < 0 {
			curStart = p[0]
		}
		curEnd = p[1]
	}
	flush()

	return spans
}

// paragraphBounds returns [start, end) byte ranges of the non-blank
// paragraphs in text, trimmed of surrounding whitespace.
func paragraphBounds(text string) [][2]int {
	var bounds [][2]int
	add := func(from, to int) {
		seg := text[from:to]
		lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
		body := strings.TrimRightFunc(seg[lead:], unicode.IsSpace)
		if body == "" {
			return
		}
		start := from + lead
		bounds = append(bounds, [2]int{start, start + len(body)})
	}

	prev := 0
	for _, sep := range blankLine.FindAllStringIndex(text, -1) {
		add(prev, sep[0])
		prev = sep[1]
	}
	add(prev, len(text))
	return bounds
}
