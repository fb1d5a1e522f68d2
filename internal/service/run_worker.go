package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
)

// DefaultConcurrency bounds in-flight pages when no explicit bound is
// configured. It protects the rasterizer and the extraction service, not
// the local CPU.
const DefaultConcurrency = 2

// PageWorkerConfig holds settings for the page worker.
type PageWorkerConfig struct {
	Concurrency int
}

// RunStats summarizes one finished run. Failures are tallied per file ID,
// not per name; two queued files may share a name.
type RunStats struct {
	RowsAdded      int
	FailedPages    int
	FailuresByFile map[uuid.UUID]int
}

// PageWorker drives the page tasks of one run: fetch the document, render
// the page, call the extraction service, admit the notes. Tasks are
// dispatched strictly in list order as slots free up; completion order is
// whatever it is.
type PageWorker struct {
	docs       port.DocumentStore
	rasterizer port.PageRasterizer
	extractor  port.NoteExtractor
	session    *Session
	progress   *progress.Tracker
	cfg        PageWorkerConfig
}

// NewPageWorker creates a new PageWorker. A non-positive concurrency falls
// back to DefaultConcurrency.
func NewPageWorker(
	docs port.DocumentStore,
	rasterizer port.PageRasterizer,
	extractor port.NoteExtractor,
	session *Session,
	tracker *progress.Tracker,
	cfg PageWorkerConfig,
) *PageWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &PageWorker{
		docs:       docs,
		rasterizer: rasterizer,
		extractor:  extractor,
		session:    session,
		progress:   tracker,
		cfg:        cfg,
	}
}

// Run processes every task exactly once and blocks until none are in
// flight. A failing task is reported as a notice and does not abort the
// run or its neighbors; there is no retry. Progress advances once per
// task, success or failure alike.
func (w *PageWorker) Run(ctx context.Context, tasks []domain.PageTask) RunStats {
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	var mu sync.Mutex
	stats := RunStats{FailuresByFile: make(map[uuid.UUID]int)}

	log.Printf("pageWorker: starting run (%d pages, concurrency=%d)", len(tasks), w.cfg.Concurrency)

	for i := range tasks {
		task := tasks[i]

		sem <- struct{}{} // acquire in list order
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release
			defer w.progress.Advance()

			added, err := w.processPage(ctx, task)

			mu.Lock()
			stats.RowsAdded += added
			if err != nil {
				stats.FailedPages++
				stats.FailuresByFile[task.FileID]++
			}
			mu.Unlock()

			if err != nil {
				log.Printf("pageWorker: %s page %d/%d failed: %v",
					task.FileName, task.PageIndex, task.PageCount, err)
				w.progress.Notice(fmt.Sprintf("%s page %d: %v", task.FileName, task.PageIndex, err))
			}
		}()
	}

	wg.Wait()
	log.Printf("pageWorker: run complete (%d rows added, %d of %d pages failed)",
		stats.RowsAdded, stats.FailedPages, len(tasks))
	return stats
}

// processPage handles a single task. A panic anywhere in the chain is
// turned into an ordinary task failure so one bad page cannot take the
// whole run down.
func (w *PageWorker) processPage(ctx context.Context, task domain.PageTask) (added int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	w.progress.TaskStarted(task)

	pdf, err := w.docs.Fetch(ctx, task.StorageKey)
	if err != nil {
		return 0, fmt.Errorf("fetching document: %w", err)
	}

	image, err := w.rasterizer.RenderPage(ctx, pdf, task.PageIndex)
	if err != nil {
		return 0, fmt.Errorf("rendering page: %w", err)
	}

	notes, err := w.extractor.Extract(ctx, image, domain.PageMeta{
		FileName:  task.FileName,
		FileIndex: task.FileIndex,
		PageIndex: task.PageIndex,
	})
	if err != nil {
		return 0, fmt.Errorf("extracting notes: %w", err)
	}

	return w.session.AdmitPage(ctx, task, notes), nil
}
