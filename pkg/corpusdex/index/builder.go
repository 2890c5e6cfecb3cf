package index

import (
	"encoding/json"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
	"github.com/corpusdex/engine/pkg/corpusdex/kvstore"
)

// MaxIterations is the default number of documents (Phase 1) or terms
// (Phase 2) accumulated in memory between flushes to the KV store.
const MaxIterations = 10000

// scoringTempSuffix names the scratch store Phase 2 writes its scored
// postings to before renaming it over the Phase-1 postings store.
const scoringTempSuffix = ".tmp"

// Paths names the four files a Builder's two stores live at.
type Paths struct {
	PostingsData     string
	PostingsManifest string
	DocMapData       string
	DocMapManifest   string
}

// Builder drives the two-phase build: Phase 1 walks a directory of
// crawled records into batched raw term-frequency postings; Phase 2
// rewrites them into TF-IDF scores.
type Builder struct {
	Paths Paths

	// MaxIterations overrides the default batch size. Zero means use
	// MaxIterations.
	MaxIterations int
}

// NewBuilder returns a Builder with the default batch size.
func NewBuilder(paths Paths) *Builder {
	return &Builder{Paths: paths}
}

// Result summarizes a completed build.
type Result struct {
	TotalDocs  int
	TotalTerms int
}

// Build runs Phase 1 (ingestion) then Phase 2 (scoring) over every file
// under dataDir.
func (b *Builder) Build(dataDir string) (Result, error) {
	totalDocs, err := b.ingest(dataDir)
	if err != nil {
		return Result{}, err
	}
	totalTerms, err := b.score(totalDocs)
	if err != nil {
		return Result{}, err
	}
	return Result{TotalDocs: totalDocs, TotalTerms: totalTerms}, nil
}

func (b *Builder) batchSize() int {
	if b.MaxIterations > 0 {
		return b.MaxIterations
	}
	return MaxIterations
}

type crawlRecord struct {
	URL      string `json:"url"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func readRecord(path string) (crawlRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return crawlRecord{}, corpuserr.IO("read crawl record "+path, err)
	}
	var rec crawlRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return crawlRecord{}, corpuserr.Parse("decode crawl record "+path, err)
	}
	return rec, nil
}

// ingest is Phase 1: a streaming, batched walk of dataDir that builds the
// raw-TF postings store and the doc-map store. It returns the total
// number of documents ingested.
func (b *Builder) ingest(dataDir string) (int, error) {
	postings, err := kvstore.New[string, []TempPosting](b.Paths.PostingsData, b.Paths.PostingsManifest)
	if err != nil {
		return 0, err
	}
	defer postings.Close()

	docs, err := kvstore.New[DocID, Doc](b.Paths.DocMapData, b.Paths.DocMapManifest)
	if err != nil {
		return 0, err
	}
	defer docs.Close()

	batchSize := b.batchSize()
	partialPostings := make(map[string][]TempPosting)
	partialDocs := make(map[DocID]Doc)
	var nextID DocID
	sinceFlush := 0

	flush := func() error {
		if len(partialPostings) > 0 {
			if err := kvstore.Extend(postings, partialPostings); err != nil {
				return err
			}
			partialPostings = make(map[string][]TempPosting)
		}
		if len(partialDocs) > 0 {
			if err := docs.Insert(partialDocs); err != nil {
				return err
			}
			partialDocs = make(map[DocID]Doc)
		}
		sinceFlush = 0
		return nil
	}

	walkErr := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// An error from the walk itself (e.g. permission denied
			// listing a subdirectory) is skipped; only a failure to read
			// or parse a file we did reach aborts the whole build.
			return nil
		}
		if d.IsDir() {
			return nil
		}

		record, err := readRecord(path)
		if err != nil {
			return err
		}

		counts, err := WordCount(record.Content)
		if err != nil {
			return err
		}

		id := nextID
		nextID++
		for word, tf := range counts {
			partialPostings[word] = append(partialPostings[word], TempPosting{DocID: id, TF: tf})
		}
		partialDocs[id] = Doc{URL: record.URL}

		sinceFlush++
		if sinceFlush >= batchSize {
			return flush()
		}
		return nil
	})
	if walkErr != nil {
		return 0, walkErr
	}
	if err := flush(); err != nil {
		return 0, err
	}

	return int(nextID), nil
}

// score is Phase 2: a streaming, batched rewrite of the Phase-1 postings
// store into a scored store, written to a temp path and renamed over the
// original once both files are fully written.
func (b *Builder) score(totalDocs int) (int, error) {
	postings, err := kvstore.Open[string, []TempPosting](b.Paths.PostingsData, b.Paths.PostingsManifest)
	if err != nil {
		return 0, err
	}
	defer postings.Close()

	tempDataPath := b.Paths.PostingsData + scoringTempSuffix
	tempManifestPath := b.Paths.PostingsManifest + scoringTempSuffix

	scored, err := kvstore.New[string, []Posting](tempDataPath, tempManifestPath)
	if err != nil {
		return 0, err
	}

	batchSize := b.batchSize()
	batch := make(map[string][]Posting)
	sinceFlush := 0
	termCount := 0
	n := float64(totalDocs)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := kvstore.Extend(scored, batch); err != nil {
			return err
		}
		batch = make(map[string][]Posting)
		sinceFlush = 0
		return nil
	}

	it := postings.Iterate()
	for {
		entry, more, iterErr := it.Next()
		if iterErr != nil {
			scored.Close()
			return 0, iterErr
		}
		if !more {
			break
		}

		df := float64(len(entry.Value))
		scoredList := make([]Posting, 0, len(entry.Value))
		for _, p := range entry.Value {
			tfIdf := (1 + math.Log10(float64(p.TF))) * math.Log10(n/df)
			scoredList = append(scoredList, Posting{DocID: p.DocID, TFIDF: tfIdf})
		}
		batch[entry.Key] = scoredList
		termCount++

		sinceFlush++
		if sinceFlush >= batchSize {
			if err := flush(); err != nil {
				scored.Close()
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		scored.Close()
		return 0, err
	}
	if err := scored.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tempDataPath, b.Paths.PostingsData); err != nil {
		return 0, corpuserr.IO("rename scored data file into place", err)
	}
	if err := os.Rename(tempManifestPath, b.Paths.PostingsManifest); err != nil {
		return 0, corpuserr.IO("rename scored manifest file into place", err)
	}

	return termCount, nil
}
