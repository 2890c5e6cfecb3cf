// Command corpusdex builds and queries a disk-resident, TF-IDF-scored
// full-text index over a directory of crawled HTML documents.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/corpusdex/engine/pkg/corpusdex/analytics"
	"github.com/corpusdex/engine/pkg/corpusdex/config"
	"github.com/corpusdex/engine/pkg/corpusdex/history"
	"github.com/corpusdex/engine/pkg/corpusdex/index"
	"github.com/corpusdex/engine/pkg/corpusdex/kvstore"
	"github.com/corpusdex/engine/pkg/corpusdex/maintenance"
	"github.com/corpusdex/engine/pkg/corpusdex/query"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to a YAML settings file")
		crawledData = flag.String("crawled-data", "", "path to the crawled data directory (required with -rebuild)")
		rebuild     = flag.Bool("rebuild", false, "rebuild the index from -crawled-data before serving queries")
		historyDB   = flag.String("history", "", "path to the build-run history database (optional)")
	)
	flag.Parse()

	if *configPath == "" {
		log.Println("corpusdex: -config is required")
		return 1
	}
	if *rebuild && *crawledData == "" {
		log.Println("corpusdex: -rebuild requires -crawled-data")
		return 1
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Printf("corpusdex: load config: %v", err)
		return 1
	}

	ctx := context.Background()

	var ledger *history.Ledger
	if *historyDB != "" {
		ledger, err = history.Open(ctx, *historyDB)
		if err != nil {
			log.Printf("corpusdex: open history database: %v", err)
			return 1
		}
		defer ledger.Close()
	}

	paths := settings.Paths()

	if *rebuild {
		if res, cerr := maintenance.CleanStray(
			dirOf(paths.PostingsData), dirOf(paths.DocMapData),
		); cerr != nil {
			log.Printf("corpusdex: stray-file cleanup: %v", cerr)
		} else if res.Removed > 0 {
			log.Printf("corpusdex: removed %d stray temp file(s) before rebuild", res.Removed)
		}

		if err := rebuildIndex(ctx, ledger, paths, settings.MaxIterations, *crawledData); err != nil {
			log.Printf("corpusdex: build failed: %v", err)
			return 1
		}
	}

	return serve(paths, settings.CacheSize)
}

func dirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

func rebuildIndex(ctx context.Context, ledger *history.Ledger, paths index.Paths, maxIterations int, crawledData string) error {
	started := time.Now()
	var runID string
	if ledger != nil {
		var err error
		runID, err = ledger.Started(ctx, started)
		if err != nil {
			log.Printf("corpusdex: record run start: %v", err)
		}
	}

	builder := index.NewBuilder(paths)
	builder.MaxIterations = maxIterations

	result, err := builder.Build(crawledData)
	if err != nil {
		if ledger != nil && runID != "" {
			if ferr := ledger.Failed(ctx, runID, time.Now(), err); ferr != nil {
				log.Printf("corpusdex: record run failure: %v", ferr)
			}
		}
		return err
	}

	elapsed := time.Since(started)
	log.Print(analytics.FromResult(result, elapsed).String())

	if ledger != nil && runID != "" {
		if ferr := ledger.Finished(ctx, runID, time.Now(), result.TotalDocs, result.TotalTerms); ferr != nil {
			log.Printf("corpusdex: record run completion: %v", ferr)
		}
	}
	return nil
}

func serve(paths index.Paths, cacheSize int) int {
	postings, err := kvstore.Open[string, []index.Posting](paths.PostingsData, paths.PostingsManifest)
	if err != nil {
		log.Printf("corpusdex: open postings store: %v", err)
		return 1
	}
	defer postings.Close()

	docs, err := kvstore.Open[index.DocID, index.Doc](paths.DocMapData, paths.DocMapManifest)
	if err != nil {
		log.Printf("corpusdex: open doc-map store: %v", err)
		return 1
	}
	defer docs.Close()

	engine, err := query.NewEngine(postings, docs, cacheSize)
	if err != nil {
		log.Printf("corpusdex: create query engine: %v", err)
		return 1
	}

	sessionID := uuid.New()
	log.Printf("corpusdex: session %s ready", sessionID)

	return repl(engine)
}

// repl reads queries from stdin until the user types "exit", printing
// ranked results and timing for each.
func repl(engine *query.Engine) int {
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("search> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		start := time.Now()
		results, err := engine.Search(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Printf("%d result(s) in %s:\n", len(results), time.Since(start))
		for _, r := range results {
			fmt.Printf("  %.4f  %s\n", r.Score, r.URL)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("corpusdex: read stdin: %v", err)
		return 1
	}
	return 0
}
