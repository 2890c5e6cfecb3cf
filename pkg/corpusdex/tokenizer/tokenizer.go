// Package tokenizer turns raw text into the lowercase, stemmed word tokens
// that both the index builder and the query engine key postings on. It is
// deliberately dumb: no stopword filtering, no synonym normalization — a
// function word like "a" or "am" is as much a token as anything else, so
// indexing and querying agree on what a word is without a side table that
// could drift between build time and query time.
package tokenizer

import (
	"regexp"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// wordPattern matches runs of word characters, the same boundary the
// original's `\b\w+\b` draws: letters, digits, and underscore.
var wordPattern = regexp.MustCompile(`\w+`)

// Tokenize lowercases text, splits it on non-word boundaries, and reduces
// each resulting word to its Porter stem. Tokens are returned in the order
// they appear; duplicates are not removed.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, porterstemmer.StemString(strings.ToLower(m)))
	}
	return tokens
}
