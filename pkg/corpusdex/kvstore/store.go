// Package kvstore implements the persistent, disk-resident key-value store
// that is the only storage primitive used by the rest of the index core
// (spec.md §4.C). A Store is a typed mapping from keys to serialized
// values: point lookup, full-map iteration, whole-map replacement insert,
// and (via the package-level Extend function) set-like extend-merge of
// slice-valued entries.
//
// Storage layout: the data file is a concatenation of opaque value blobs
// with no framing; the manifest file holds a gob-encoded map from key to
// SeekPos (the byte range of the current value). Both paths are supplied
// by the caller; the manifest path is never derived from the data path.
package kvstore

import (
	"os"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// Store is a typed, disk-backed key-value map. K must be comparable (it is
// used as a Go map key for the in-memory manifest); V must be a type gob
// can encode (exported fields only, for struct V).
type Store[K comparable, V any] struct {
	dataPath     string
	manifestPath string
	file         *os.File
	idx          manifest[K]
}

// New creates a fresh, empty store at dataPath/manifestPath. Both files are
// created (truncated if they already exist).
func New[K comparable, V any](dataPath, manifestPath string) (*Store[K, V], error) {
	dataFile, err := os.Create(dataPath)
	if err != nil {
		return nil, corpuserr.IO("create data file", err)
	}
	dataFile.Close()

	idx := make(manifest[K])
	if err := writeManifest(manifestPath, idx); err != nil {
		return nil, err
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, corpuserr.IO("open data file", err)
	}

	return &Store[K, V]{
		dataPath:     dataPath,
		manifestPath: manifestPath,
		file:         file,
		idx:          idx,
	}, nil
}

// Open opens an existing store, loading its manifest fully into memory.
func Open[K comparable, V any](dataPath, manifestPath string) (*Store[K, V], error) {
	idx, err := readManifest[K](manifestPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, corpuserr.IO("open data file", err)
	}

	return &Store[K, V]{
		dataPath:     dataPath,
		manifestPath: manifestPath,
		file:         file,
		idx:          idx,
	}, nil
}

// Close releases the store's open file handle.
func (s *Store[K, V]) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return corpuserr.IO("close data file", err)
	}
	return nil
}

// Len reports the number of live keys in the store.
func (s *Store[K, V]) Len() int {
	return len(s.idx)
}

// Get performs a point lookup. The second return value is false when key
// is absent, mirroring the "none" case of spec.md's option<V>.
func (s *Store[K, V]) Get(key K) (V, bool, error) {
	var zero V
	pos, ok := s.idx[key]
	if !ok {
		return zero, false, nil
	}

	buf := make([]byte, pos.Length)
	if _, err := s.file.ReadAt(buf, int64(pos.Offset)); err != nil {
		return zero, false, corpuserr.IO("read value", err)
	}

	v, err := decode[V](buf)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Insert replaces the store with current ∪ batch, with batch overriding
// current on shared keys. A no-op when batch is empty. Atomic with respect
// to crashes: writes a temp data file and a temp manifest file, flushes
// and fsyncs both, then renames each over the original in turn.
func (s *Store[K, V]) Insert(batch map[K]V) error {
	if len(batch) == 0 {
		return nil
	}

	build := func(w *tempWriter) (manifest[K], error) {
		newIdx := make(manifest[K], len(s.idx))

		for key, pos := range s.idx {
			if _, overridden := batch[key]; overridden {
				continue
			}
			buf := make([]byte, pos.Length)
			if _, err := s.file.ReadAt(buf, int64(pos.Offset)); err != nil {
				return nil, corpuserr.IO("read existing value", err)
			}
			off, err := w.write(buf)
			if err != nil {
				return nil, err
			}
			newIdx[key] = SeekPos{Offset: off, Length: pos.Length}
		}

		for key, value := range batch {
			data, err := encode(value)
			if err != nil {
				return nil, err
			}
			off, err := w.write(data)
			if err != nil {
				return nil, err
			}
			newIdx[key] = SeekPos{Offset: off, Length: uint64(len(data))}
		}

		return newIdx, nil
	}

	return s.rebuild(build)
}

// rebuild drives the common write-temp/fsync/rename/reopen sequence shared
// by Insert and Extend; build supplies the new manifest by writing through
// w and copying/merging whatever entries it needs from the current store.
func (s *Store[K, V]) rebuild(build func(w *tempWriter) (manifest[K], error)) error {
	tempDataPath := s.dataPath + tempSuffix
	w, err := newTempWriter(tempDataPath)
	if err != nil {
		return err
	}

	newIdx, err := build(w)
	if err != nil {
		w.abort()
		return err
	}

	if err := w.finish(); err != nil {
		return err
	}

	tempManifestPath := s.manifestPath + tempSuffix
	if err := writeManifest(tempManifestPath, newIdx); err != nil {
		return err
	}

	if err := os.Rename(tempDataPath, s.dataPath); err != nil {
		return corpuserr.IO("rename data file into place", err)
	}
	if err := os.Rename(tempManifestPath, s.manifestPath); err != nil {
		return corpuserr.IO("rename manifest file into place", err)
	}

	if s.file != nil {
		s.file.Close()
	}
	file, err := os.Open(s.dataPath)
	if err != nil {
		return corpuserr.IO("reopen data file", err)
	}
	s.file = file
	s.idx = newIdx
	return nil
}

// Extend performs the set-like extend-merge available for container
// (slice) values: for keys present in both the current store and batch,
// the stored slice is the old slice followed by the new one (append
// semantics, duplicates allowed — deduping is the caller's job, per
// spec.md's Design Notes). It cannot be a method on Store[K, V] because Go
// has no "V is a container of T" bound; it is a free function callable
// only when V is instantiated as []T.
func Extend[K comparable, T any](s *Store[K, []T], batch map[K][]T) error {
	if len(batch) == 0 {
		return nil
	}

	build := func(w *tempWriter) (manifest[K], error) {
		newIdx := make(manifest[K], len(s.idx))

		for key, pos := range s.idx {
			if _, inBatch := batch[key]; inBatch {
				continue
			}
			buf := make([]byte, pos.Length)
			if _, err := s.file.ReadAt(buf, int64(pos.Offset)); err != nil {
				return nil, corpuserr.IO("read existing value", err)
			}
			off, err := w.write(buf)
			if err != nil {
				return nil, err
			}
			newIdx[key] = SeekPos{Offset: off, Length: pos.Length}
		}

		for key, value := range batch {
			merged := value
			if pos, existed := s.idx[key]; existed {
				buf := make([]byte, pos.Length)
				if _, err := s.file.ReadAt(buf, int64(pos.Offset)); err != nil {
					return nil, corpuserr.IO("read existing value for extend", err)
				}
				old, err := decode[[]T](buf)
				if err != nil {
					return nil, err
				}
				merged = append(old, value...)
			}

			data, err := encode(merged)
			if err != nil {
				return nil, err
			}
			off, err := w.write(data)
			if err != nil {
				return nil, err
			}
			newIdx[key] = SeekPos{Offset: off, Length: uint64(len(data))}
		}

		return newIdx, nil
	}

	return s.rebuild(build)
}
