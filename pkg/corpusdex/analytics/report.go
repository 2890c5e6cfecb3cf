// Package analytics turns a completed build's raw counters into the
// human-readable summary line printed at the end of a build run.
package analytics

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/corpusdex/engine/pkg/corpusdex/index"
)

// Snapshot is a point-in-time summary of a build's results.
type Snapshot struct {
	TotalDocs  int
	TotalTerms int
	Elapsed    time.Duration
}

// FromResult builds a Snapshot from a completed index.Result and the
// wall-clock duration the build took.
func FromResult(result index.Result, elapsed time.Duration) Snapshot {
	return Snapshot{
		TotalDocs:  result.TotalDocs,
		TotalTerms: result.TotalTerms,
		Elapsed:    elapsed,
	}
}

// String renders the snapshot as a single human-readable summary line,
// e.g. "indexed 12,480 documents into 38,112 terms in 4.2s".
func (s Snapshot) String() string {
	return fmt.Sprintf("indexed %s documents into %s terms in %s",
		humanize.Comma(int64(s.TotalDocs)),
		humanize.Comma(int64(s.TotalTerms)),
		s.Elapsed.Round(time.Millisecond))
}
