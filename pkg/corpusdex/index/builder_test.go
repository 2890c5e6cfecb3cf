package index

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpusdex/engine/pkg/corpusdex/kvstore"
)

func writeRecord(t *testing.T, dir, name string, rec crawlRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func newPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		PostingsData:     filepath.Join(dir, "postings.data"),
		PostingsManifest: filepath.Join(dir, "postings.manifest"),
		DocMapData:       filepath.Join(dir, "docmap.data"),
		DocMapManifest:   filepath.Join(dir, "docmap.manifest"),
	}
}

func TestBuildSingleDocumentUniqueTermScoresZero(t *testing.T) {
	dataDir := t.TempDir()
	writeRecord(t, dataDir, "0.json", crawlRecord{
		URL:     "https://example.com/unique",
		Content: "<html><body><p>unique</p></body></html>",
	})

	paths := newPaths(t)
	b := NewBuilder(paths)
	result, err := b.Build(dataDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.TotalDocs != 1 {
		t.Fatalf("TotalDocs = %d, want 1", result.TotalDocs)
	}

	scored, err := kvstore.Open[string, []Posting](paths.PostingsData, paths.PostingsManifest)
	if err != nil {
		t.Fatalf("Open scored store: %v", err)
	}
	defer scored.Close()

	postings, ok, err := scored.Get("uniqu")
	if err != nil || !ok {
		t.Fatalf("Get(uniqu) = %v, %v, %v", postings, ok, err)
	}
	if len(postings) != 1 || postings[0].TFIDF != 0 {
		t.Fatalf("postings = %+v, want one entry with tf_idf 0", postings)
	}
}

func TestBuildIndexesBodyAndTitleDocsUnderSameTerm(t *testing.T) {
	dataDir := t.TempDir()
	writeRecord(t, dataDir, "0.json", crawlRecord{
		URL:     "https://example.com/body-only",
		Content: "<html><body><p>foo foo foo</p></body></html>",
	})
	writeRecord(t, dataDir, "1.json", crawlRecord{
		URL:     "https://example.com/title-only",
		Content: "<html><head><title>foo</title></head><body></body></html>",
	})

	paths := newPaths(t)
	b := NewBuilder(paths)
	if _, err := b.Build(dataDir); err != nil {
		t.Fatalf("Build: %v", err)
	}

	scored, err := kvstore.Open[string, []Posting](paths.PostingsData, paths.PostingsManifest)
	if err != nil {
		t.Fatalf("Open scored store: %v", err)
	}
	defer scored.Close()

	postings, ok, err := scored.Get("foo")
	if err != nil || !ok {
		t.Fatalf("Get(foo) = %v, %v, %v", postings, ok, err)
	}
	if len(postings) != 2 {
		t.Fatalf("postings = %+v, want 2 entries", postings)
	}

	byDoc := make(map[DocID]float64, 2)
	for _, p := range postings {
		byDoc[p.DocID] = p.TFIDF
	}
	// df == n == 2, so log10(n/df) == 0 and every score is 0 regardless of
	// tf — this fixture only asserts both docs were indexed under "foo".
	if _, ok := byDoc[0]; !ok {
		t.Fatalf("doc 0 missing from postings for foo: %+v", postings)
	}
	if _, ok := byDoc[1]; !ok {
		t.Fatalf("doc 1 missing from postings for foo: %+v", postings)
	}
}

func TestBuildTfIdfFormula(t *testing.T) {
	dataDir := t.TempDir()
	writeRecord(t, dataDir, "0.json", crawlRecord{
		URL:     "https://example.com/a",
		Content: "<html><body><p>alpha</p></body></html>",
	})
	writeRecord(t, dataDir, "1.json", crawlRecord{
		URL:     "https://example.com/b",
		Content: "<html><body><p>beta</p></body></html>",
	})

	paths := newPaths(t)
	b := NewBuilder(paths)
	if _, err := b.Build(dataDir); err != nil {
		t.Fatalf("Build: %v", err)
	}

	scored, err := kvstore.Open[string, []Posting](paths.PostingsData, paths.PostingsManifest)
	if err != nil {
		t.Fatalf("Open scored store: %v", err)
	}
	defer scored.Close()

	postings, ok, err := scored.Get("alpha")
	if err != nil || !ok || len(postings) != 1 {
		t.Fatalf("Get(alpha) = %v, %v, %v", postings, ok, err)
	}

	// tf=1, df=1, n=2: (1 + log10(1)) * log10(2/1) = log10(2).
	want := math.Log10(2)
	got := postings[0].TFIDF
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("tf_idf = %v, want %v", got, want)
	}
}
