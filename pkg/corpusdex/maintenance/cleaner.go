// Package maintenance sweeps up after an aborted build. A crash between a
// rebuild's write-temp step and its rename-into-place step leaves a
// `<path>.tmp` sibling on disk; CleanStray finds and removes those.
package maintenance

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tempSuffix matches the sibling path convention used by every store
// rebuild and the Phase-2 scoring rewrite.
const tempSuffix = ".tmp"

// Result summarizes a stray-file cleanup pass.
type Result struct {
	Scanned int
	Removed int
	Errors  int
}

// CleanStray walks each of dirs, removing any file whose name ends in
// tempSuffix. A directory that cannot be walked, or a file that cannot be
// removed, is counted as an error and skipped rather than aborting the
// whole sweep.
func CleanStray(dirs ...string) (Result, error) {
	var res Result

	for _, dir := range dirs {
		if dir == "" {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				res.Errors++
				return nil
			}
			if d.IsDir() {
				return nil
			}
			res.Scanned++
			if !strings.HasSuffix(path, tempSuffix) {
				return nil
			}
			if err := os.Remove(path); err != nil {
				res.Errors++
				return nil
			}
			res.Removed++
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}
