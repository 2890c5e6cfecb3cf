package kvstore

import (
	"bufio"
	"os"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// tempSuffix names the scratch file a rebuild writes to before it is
// renamed over the live data or manifest file. maintenance.CleanStray
// sweeps for files with this suffix left behind by an aborted rebuild.
const tempSuffix = ".tmp"

// tempWriter accumulates a rebuild's new data file, tracking the running
// write offset so callers can compute each entry's SeekPos as they go.
type tempWriter struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	offset uint64
}

func newTempWriter(path string) (*tempWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, corpuserr.IO("create temp data file", err)
	}
	return &tempWriter{path: path, file: file, buf: bufio.NewWriter(file)}, nil
}

// write appends data and returns the offset it was written at.
func (w *tempWriter) write(data []byte) (uint64, error) {
	off := w.offset
	n, err := w.buf.Write(data)
	if err != nil {
		return 0, corpuserr.IO("write temp data file", err)
	}
	w.offset += uint64(n)
	return off, nil
}

// finish flushes and fsyncs the temp file and closes it.
func (w *tempWriter) finish() error {
	if err := w.buf.Flush(); err != nil {
		return corpuserr.IO("flush temp data file", err)
	}
	if err := w.file.Sync(); err != nil {
		return corpuserr.IO("sync temp data file", err)
	}
	if err := w.file.Close(); err != nil {
		return corpuserr.IO("close temp data file", err)
	}
	return nil
}

// abort discards a rebuild that failed partway through, removing the
// half-written temp file so it never gets mistaken for a real one.
func (w *tempWriter) abort() {
	w.file.Close()
	os.Remove(w.path)
}
