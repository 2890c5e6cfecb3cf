// Package query answers free-text searches against a built, scored index:
// tokenize the query, accumulate TF-IDF contributions per document, sort
// by score descending, and resolve doc-ids to URLs.
package query

import (
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
	"github.com/corpusdex/engine/pkg/corpusdex/index"
	"github.com/corpusdex/engine/pkg/corpusdex/tokenizer"
)

// Result is one ranked hit: a document's URL and its accumulated score.
type Result struct {
	URL   string
	Score float64
}

// Engine holds the two read-only stores a query session needs for its
// lifetime: the scored postings store and the doc-id→URL map.
type Engine struct {
	Postings *index.ScoredStore
	Docs     *index.DocStore

	// cache memoizes postings lookups across queries in the same
	// session. It never changes an answer — a miss just means slower,
	// not wrong — so it is purely a point-lookup accelerator, not part
	// of the store's contract.
	cache *lru.Cache[string, []index.Posting]
}

// NewEngine wraps already-open stores. cacheSize of 0 disables caching.
func NewEngine(postings *index.ScoredStore, docs *index.DocStore, cacheSize int) (*Engine, error) {
	e := &Engine{Postings: postings, Docs: docs}
	if cacheSize > 0 {
		cache, err := lru.New[string, []index.Posting](cacheSize)
		if err != nil {
			return nil, corpuserr.Generic("create postings cache: " + err.Error())
		}
		e.cache = cache
	}
	return e, nil
}

func (e *Engine) lookup(term string) ([]index.Posting, bool, error) {
	if e.cache != nil {
		if postings, ok := e.cache.Get(term); ok {
			return postings, true, nil
		}
	}

	postings, ok, err := e.Postings.Get(term)
	if err != nil {
		return nil, false, err
	}
	if ok && e.cache != nil {
		e.cache.Add(term, postings)
	}
	return postings, ok, nil
}

// Search tokenizes query with the same tokenizer used at index-build time,
// accumulates TF-IDF contributions per document across every query token,
// sorts descending by score (NaN sorted to the end), and resolves each
// doc-id to its URL. A doc-id present in the postings store but missing
// from the doc-map is treated as index corruption and fails the query.
func (e *Engine) Search(queryText string) ([]Result, error) {
	tokens := tokenizer.Tokenize(queryText)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores := make(map[index.DocID]float64)
	order := make([]index.DocID, 0)

	for _, token := range tokens {
		postings, ok, err := e.lookup(token)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, p := range postings {
			if _, seen := scores[p.DocID]; !seen {
				order = append(order, p.DocID)
			}
			scores[p.DocID] += p.TFIDF
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := scores[order[i]], scores[order[j]]
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})

	results := make([]Result, 0, len(order))
	for _, docID := range order {
		doc, ok, err := e.Docs.Get(docID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, corpuserr.Generic("document not found for doc-id in postings")
		}
		results = append(results, Result{URL: doc.URL, Score: scores[docID]})
	}

	return results, nil
}
