package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token, in runes, that is indexed.
const MinTokenLength = 2

// Tokenize lower-cases text, splits it on whitespace and strips every
// character that is not a letter or digit from each token. Tokens shorter
// than MinTokenLength runes are dropped, so "e-mail" yields "email".
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		tok := strings.Map(keepAlnum, f)
		if utf8.RuneCountInString(tok) >= MinTokenLength {
			out = append(out, tok)
		}
	}
	return out
}

func keepAlnum(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return -1
}

// termCounts returns raw term counts and the largest of them.
func termCounts(tokens []string) (map[string]int, int) {
	counts := make(map[string]int, len(tokens))
	maxTF := 0
	for _, tok := range tokens {
		counts[tok]++
		if counts[tok] > maxTF {
			maxTF = counts[tok]
		}
	}
	return counts, maxTF
}
