// Command batch processes scanned shipment PDFs from the command line
// through the same extraction pipeline as the server and writes the result
// table as CSV.
// Usage: batch [-out leveringen.csv] [-state rows.json] file.pdf [file2.pdf ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/export"
	"github.com/SkiltonTrading/cmrv2/internal/extract"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
	"github.com/SkiltonTrading/cmrv2/internal/rasterize"
	"github.com/SkiltonTrading/cmrv2/internal/results"
	"github.com/SkiltonTrading/cmrv2/internal/service"
	statefile "github.com/SkiltonTrading/cmrv2/internal/statestore/file"
	"github.com/SkiltonTrading/cmrv2/internal/statestore/memory"
)

// pathStore serves documents straight from the paths given on the command
// line; storage keys are the paths themselves.
type pathStore struct{}

func (pathStore) Put(ctx context.Context, input port.StoreInput) error {
	return errors.New("pathStore is read-only")
}

func (pathStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(key)
}

func (pathStore) Delete(ctx context.Context, key string) error {
	return errors.New("pathStore is read-only")
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outPath := flag.String("out", "leveringen.csv", `output CSV path, "-" for stdout`)
	statePath := flag.String("state", "", "persist rows to this file and rehydrate dedupe from it first")
	concurrency := flag.Int("concurrency", 0, "pages in flight at once (default from config)")
	flag.Parse()

	if flag.NArg() == 0 {
		return errors.New("usage: batch [-out leveringen.csv] [-state rows.json] file.pdf ...")
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *concurrency <= 0 {
		*concurrency = cfg.Pipeline.Concurrency
	}

	// Without -state nothing survives the process; with it, repeated
	// invocations keep admitting only unseen notes.
	var states port.StateStore
	if *statePath != "" {
		states = statefile.NewStore(*statePath)
	} else {
		states = memory.NewStore()
	}

	ctx := context.Background()
	session := service.NewSession(states)
	if err := session.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore persisted rows: %w", err)
	}

	rasterizer := rasterize.NewRasterizer()

	// Page-count every input up front so the task list is complete before
	// the first page is dispatched.
	var tasks []domain.PageTask
	for fileIndex, path := range flag.Args() {
		pdf, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		pages, err := rasterizer.PageCount(ctx, pdf)
		if err != nil {
			return fmt.Errorf("unreadable document %s: %w", path, err)
		}

		fileID := uuid.New()
		for page := 1; page <= pages; page++ {
			tasks = append(tasks, domain.PageTask{
				FileID:     fileID,
				FileName:   filepath.Base(path),
				FileIndex:  fileIndex,
				PageIndex:  page,
				PageCount:  pages,
				StorageKey: path,
			})
		}
	}

	tracker := progress.NewTracker()
	tracker.Begin(tasks)

	worker := service.NewPageWorker(
		pathStore{},
		rasterizer,
		extract.NewClient(&cfg.Extractor),
		session,
		tracker,
		service.PageWorkerConfig{Concurrency: *concurrency},
	)

	stats := worker.Run(ctx, tasks)
	tracker.Finish()

	rows, err := session.List(results.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing rows: %w", err)
	}

	log.Printf("processed %d pages: %d rows, %d failed pages",
		len(tasks), stats.RowsAdded, stats.FailedPages)

	out := os.Stdout
	if *outPath != "-" {
		out, err = os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *outPath, err)
		}
		defer out.Close()

		// BOM for Excel; skipped on stdout so piping stays clean.
		if _, err := out.Write(export.BOM); err != nil {
			return fmt.Errorf("writing %s: %w", *outPath, err)
		}
	}

	w := export.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := w.WriteRows(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	if *outPath != "-" {
		log.Printf("wrote %d rows to %s", len(rows), *outPath)
	}
	return nil
}
