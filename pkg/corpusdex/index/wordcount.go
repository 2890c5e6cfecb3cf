package index

import (
	"github.com/corpusdex/engine/pkg/corpusdex/extract"
	"github.com/corpusdex/engine/pkg/corpusdex/tokenizer"
)

// WordCount turns one crawl record's HTML content into weighted stem
// counts. Body text (the whole page, which already contains any bold,
// heading, and title text as part of its full text) counts once per
// occurrence; bold/heading/title streams then add their remaining weight
// on top, so a word appearing once in the title and once elsewhere in the
// body contributes 1 (body) + 1 (body, from the title's own text) + 9
// (the rest of the title's weight) = 11.
func WordCount(rawHTML string) (map[string]uint32, error) {
	streams, err := extract.Parse(rawHTML)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]uint32)
	add := func(text string, weight uint32) {
		for _, tok := range tokenizer.Tokenize(text) {
			counts[tok] += weight
		}
	}

	add(streams.Body, extract.BodyWeight)
	add(streams.Bold, extract.BoldWeight-extract.BodyWeight)
	add(streams.Header, extract.HeaderWeight-extract.BodyWeight)
	add(streams.Title, extract.TitleWeight-extract.BodyWeight)

	return counts, nil
}
