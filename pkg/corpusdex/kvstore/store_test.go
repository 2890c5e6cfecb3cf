package kvstore

import (
	"path/filepath"
	"testing"
)

func paths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "data"), filepath.Join(dir, "manifest")
}

func TestInsertAndGetString(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, string](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Insert(map[string]string{"a": "apple", "b": "banana"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	v, ok, err := s.Get("a")
	if err != nil || !ok || v != "apple" {
		t.Fatalf("Get(a) = %q, %v, %v", v, ok, err)
	}
	v, ok, err = s.Get("b")
	if err != nil || !ok || v != "banana" {
		t.Fatalf("Get(b) = %q, %v, %v", v, ok, err)
	}

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v, want false, nil", ok, err)
	}
}

func TestInsertAndGetInt(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[uint64, int64](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Insert(map[uint64]int64{1: 100, 2: 200}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	v, ok, err := s.Get(2)
	if err != nil || !ok || v != 200 {
		t.Fatalf("Get(2) = %v, %v, %v", v, ok, err)
	}
}

func TestInsertOverwritesExistingKey(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, string](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Insert(map[string]string{"a": "one"}); err != nil {
		t.Fatalf("Insert 1: %v", err)
	}
	if err := s.Insert(map[string]string{"a": "two", "b": "three"}); err != nil {
		t.Fatalf("Insert 2: %v", err)
	}

	v, ok, err := s.Get("a")
	if err != nil || !ok || v != "two" {
		t.Fatalf("Get(a) = %q, %v, %v, want two", v, ok, err)
	}
	v, ok, err = s.Get("b")
	if err != nil || !ok || v != "three" {
		t.Fatalf("Get(b) = %q, %v, %v, want three", v, ok, err)
	}
}

func TestInsertEmptyBatchIsNoop(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, string](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := s.Insert(map[string]string{"a": "apple"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(map[string]string{}); err != nil {
		t.Fatalf("Insert empty: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestRestoreFromPath(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, string](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Insert(map[string]string{"a": "apple", "b": "banana"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open[string, string](data, manifest)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("b")
	if err != nil || !ok || v != "banana" {
		t.Fatalf("Get(b) after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestExtendMergesSlices(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, []int](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if err := Extend(s, map[string][]int{"a": {1, 2}}); err != nil {
		t.Fatalf("Extend 1: %v", err)
	}
	if err := Extend(s, map[string][]int{"a": {3}, "b": {9}}); err != nil {
		t.Fatalf("Extend 2: %v", err)
	}

	v, ok, err := s.Get("a")
	if err != nil || !ok {
		t.Fatalf("Get(a) = %v, %v, %v", v, ok, err)
	}
	want := []int{1, 2, 3}
	if len(v) != len(want) {
		t.Fatalf("Get(a) = %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Get(a) = %v, want %v", v, want)
		}
	}

	v, ok, err = s.Get("b")
	if err != nil || !ok || len(v) != 1 || v[0] != 9 {
		t.Fatalf("Get(b) = %v, %v, %v, want [9]", v, ok, err)
	}
}

func TestIteratorVisitsEveryKey(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[string, int](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	if err := s.Insert(want); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := make(map[string]int)
	it := s.Iterate()
	for {
		entry, more, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !more {
			break
		}
		got[entry.Key] = entry.Value
	}

	if len(got) != len(want) {
		t.Fatalf("iterated %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %q = %d, want %d", k, got[k], v)
		}
	}
}

type testDoc struct {
	URL   string
	Title string
}

func TestInsertAndGetStruct(t *testing.T) {
	data, manifest := paths(t)
	s, err := New[uint64, testDoc](data, manifest)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	doc := testDoc{URL: "https://example.com", Title: "Example"}
	if err := s.Insert(map[uint64]testDoc{1: doc}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, ok, err := s.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get(1) = %v, %v, %v", got, ok, err)
	}
	if got != doc {
		t.Fatalf("Get(1) = %+v, want %+v", got, doc)
	}
}
