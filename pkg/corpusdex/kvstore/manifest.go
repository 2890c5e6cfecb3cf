package kvstore

import (
	"bufio"
	"encoding/gob"
	"os"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// writeManifest gob-encodes idx to path, fsyncing before close so a
// rebuild's manifest rename is never left pointing at a half-written file.
func writeManifest[K comparable](path string, idx manifest[K]) error {
	file, err := os.Create(path)
	if err != nil {
		return corpuserr.IO("create manifest file", err)
	}

	w := bufio.NewWriter(file)
	if err := gob.NewEncoder(w).Encode(idx); err != nil {
		file.Close()
		return corpuserr.Serialization("encode manifest", err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return corpuserr.IO("flush manifest file", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return corpuserr.IO("sync manifest file", err)
	}
	if err := file.Close(); err != nil {
		return corpuserr.IO("close manifest file", err)
	}
	return nil
}

// readManifest loads the full key→SeekPos mapping from path into memory.
func readManifest[K comparable](path string) (manifest[K], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, corpuserr.IO("open manifest file", err)
	}
	defer file.Close()

	idx := make(manifest[K])
	if err := gob.NewDecoder(bufio.NewReader(file)).Decode(&idx); err != nil {
		return nil, corpuserr.Serialization("decode manifest", err)
	}
	return idx, nil
}
