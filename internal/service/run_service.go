package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
)

// RunService starts processing runs over the queued files and reports
// their progress.
type RunService interface {
	// Start flattens the queue into page tasks and kicks off a run in the
	// background. It returns domain.ErrNoFilesQueued for an empty queue and
	// domain.ErrRunActive when a run is already in flight.
	Start(ctx context.Context) (domain.RunStatus, error)
	Status(ctx context.Context) domain.RunStatus
}

type runService struct {
	files    FileService
	worker   *PageWorker
	session  *Session
	tracker  *progress.Tracker
	notifier port.RunNotifier
}

// NewRunService creates a new RunService implementation.
func NewRunService(
	files FileService,
	worker *PageWorker,
	session *Session,
	tracker *progress.Tracker,
	notifier port.RunNotifier,
) RunService {
	return &runService{
		files:    files,
		worker:   worker,
		session:  session,
		tracker:  tracker,
		notifier: notifier,
	}
}

func (s *runService) Start(ctx context.Context) (domain.RunStatus, error) {
	tasks := flattenQueue(s.files.List(ctx))
	if len(tasks) == 0 {
		return domain.RunStatus{}, domain.ErrNoFilesQueued
	}

	// Begin is the run-active guard: it refuses atomically if a run is in
	// flight, so two concurrent starts cannot both pass.
	if !s.tracker.Begin(tasks) {
		return domain.RunStatus{}, domain.ErrRunActive
	}

	log.Printf("runService.Start: run started (%d files, %d pages)",
		len(s.files.List(ctx)), len(tasks))

	go s.runInBackground(tasks)

	return s.tracker.Snapshot(), nil
}

func (s *runService) Status(ctx context.Context) domain.RunStatus {
	return s.tracker.Snapshot()
}

// runInBackground drives the whole run on a fresh context, detached from
// the HTTP request that started it.
func (s *runService) runInBackground(tasks []domain.PageTask) {
	ctx := context.Background()

	stats := s.worker.Run(ctx, tasks)

	s.markFileStatuses(ctx, tasks, stats)
	s.tracker.Finish()

	snap := s.tracker.Snapshot()
	report := port.RunReport{
		TotalPages:     snap.TotalPages,
		ProcessedPages: snap.ProcessedPages,
		RowsAdded:      stats.RowsAdded,
		FailedPages:    stats.FailedPages,
		Notices:        snap.Notices,
	}
	if snap.StartedAt != nil {
		report.StartedAt = *snap.StartedAt
	}
	if snap.FinishedAt != nil {
		report.FinishedAt = *snap.FinishedAt
	}
	if err := s.notifier.NotifyRunCompleted(ctx, report); err != nil {
		log.Printf("runService: run-completed notification failed: %v", err)
	}
}

// markFileStatuses flags each file of the run as processed, or failed when
// every one of its pages failed.
func (s *runService) markFileStatuses(ctx context.Context, tasks []domain.PageTask, stats RunStats) {
	seen := make(map[uuid.UUID]bool)
	for _, task := range tasks {
		if seen[task.FileID] {
			continue
		}
		seen[task.FileID] = true

		status := domain.FileStatusProcessed
		if stats.FailuresByFile[task.FileID] == task.PageCount {
			status = domain.FileStatusFailed
		}
		if err := s.files.UpdateStatus(ctx, task.FileID, status); err != nil {
			log.Printf("runService: updating status of %s: %v", task.FileName, err)
		}
	}
}

// flattenQueue expands the queued files into one ordered task list, file
// order first, then page order within each file.
func flattenQueue(files []domain.QueuedFile) []domain.PageTask {
	var tasks []domain.PageTask
	for fileIndex, file := range files {
		for page := 1; page <= file.PageCount; page++ {
			tasks = append(tasks, domain.PageTask{
				FileID:     file.ID,
				FileName:   file.Name,
				FileIndex:  fileIndex,
				PageIndex:  page,
				PageCount:  file.PageCount,
				StorageKey: file.StorageKey,
			})
		}
	}
	return tasks
}
