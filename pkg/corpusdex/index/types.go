// Package index implements the two-phase build pipeline: Phase 1 walks a
// directory of crawled records into batched raw term-frequency postings,
// Phase 2 rewrites those postings into TF-IDF scores.
package index

import "github.com/corpusdex/engine/pkg/corpusdex/kvstore"

// DocID identifies a document within a single build. Assigned by
// ingestion order starting at 0; not stable across rebuilds.
type DocID = uint64

// TF is the weighted occurrence count of a term in a single document.
type TF = uint32

// Doc is a document record: the URL it was crawled from. Created once
// during ingestion and never mutated afterward.
type Doc struct {
	URL string
}

// TempPosting is one entry in a term's Phase-1 posting list.
type TempPosting struct {
	DocID DocID
	TF    TF
}

// Posting is one entry in a term's Phase-2, scored posting list.
type Posting struct {
	DocID DocID
	TFIDF float64
}

// PostingsStore is the first-pass term→postings store, keyed by stem.
type PostingsStore = kvstore.Store[string, []TempPosting]

// ScoredStore is the second-pass term→postings store, after TF-IDF scoring.
type ScoredStore = kvstore.Store[string, []Posting]

// DocStore maps a DocID to the Doc it identifies.
type DocStore = kvstore.Store[DocID, Doc]
