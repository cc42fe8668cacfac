// Package normalize canonicalizes free-text product names so that intents
// recorded under slightly different spellings aggregate under one key.
//
// The normalized form is the join key between catalog rows and intent rows,
// which are typed independently by admins and members. The same function must
// be applied on every write and every read; two call sites disagreeing here
// silently orphans intent data.
package normalize

import (
	"strings"
	"unicode"
)

// widthFolds maps full-width bracket and quote variants to a canonical
// half-width form.
var widthFolds = map[rune]rune{
	'（': '(',
	'）': ')',
	'〔': '(',
	'〕': ')',
	'［': '[',
	'］': ']',
	'【': '[',
	'】': ']',
	'｛': '{',
	'｝': '}',
	'＂': '"',
	'“': '"',
	'”': '"',
	'「': '"',
	'」': '"',
	'『': '"',
	'』': '"',
	'＇': '\'',
	'‘': '\'',
	'’': '\'',
}

// zero-width characters that survive unicode.IsSpace
const zeroWidth = "\u200b\u200c\u200d\u2060\ufeff"

// Name returns the canonical key for a free-text product name: whitespace and
// zero-width characters stripped, full-width brackets and quotes folded to
// half-width, letters lower-cased. Total and deterministic; an empty result
// means the input carried no usable name at all.
func Name(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || strings.ContainsRune(zeroWidth, r) {
			continue
		}
		if folded, ok := widthFolds[r]; ok {
			r = folded
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Equal reports whether two raw names normalize to the same key.
func Equal(a, b string) bool {
	return Name(a) == Name(b)
}
