// Package progress tracks how far a processing run has come, for status
// reporting only; no pipeline logic depends on it.
package progress

import (
	"math"
	"sync"
	"time"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// maxNotices bounds the notice log kept for status display; older notices
// fall off first.
const maxNotices = 20

// Tracker aggregates page counts and operator notices for the current run.
// Safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	state       domain.RunState
	total       int
	processed   int
	filePages   map[string]int
	currentFile string
	currentPage int
	notices     []string
	startedAt   *time.Time
	finishedAt  *time.Time
}

// NewTracker returns an idle Tracker.
func NewTracker() *Tracker {
	return &Tracker{state: domain.RunStateIdle}
}

// Begin transitions the tracker to running for the given task list and
// resets all per-run counters. It returns false, changing nothing, if a
// run is already active.
func (t *Tracker) Begin(tasks []domain.PageTask) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == domain.RunStateRunning {
		return false
	}

	filePages := make(map[string]int)
	for _, task := range tasks {
		filePages[task.FileName] = task.PageCount
	}

	now := time.Now().UTC()
	t.state = domain.RunStateRunning
	t.total = len(tasks)
	t.processed = 0
	t.filePages = filePages
	t.currentFile = ""
	t.currentPage = 0
	t.notices = nil
	t.startedAt = &now
	t.finishedAt = nil
	return true
}

// TaskStarted records which file and page a worker just picked up.
func (t *Tracker) TaskStarted(task domain.PageTask) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentFile = task.FileName
	t.currentPage = task.PageIndex
}

// Advance increments the processed-page count by one. It is called exactly
// once per task, whether the task succeeded or failed.
func (t *Tracker) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++
}

// Notice appends a non-fatal operator notice, keeping at most maxNotices.
func (t *Tracker) Notice(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notices = append(t.notices, msg)
	if len(t.notices) > maxNotices {
		t.notices = t.notices[len(t.notices)-maxNotices:]
	}
}

// Finish transitions the tracker back to idle.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.state = domain.RunStateIdle
	t.finishedAt = &now
}

// Running reports whether a run is active.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == domain.RunStateRunning
}

// Processed reports the processed-page count of the current run.
func (t *Tracker) Processed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() domain.RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	percentage := 0
	if t.total > 0 {
		percentage = int(math.Floor(float64(t.processed)/float64(t.total)*100 + 0.5))
		if percentage > 100 {
			percentage = 100
		}
	}

	filePages := make(map[string]int, len(t.filePages))
	for name, pages := range t.filePages {
		filePages[name] = pages
	}
	notices := make([]string, len(t.notices))
	copy(notices, t.notices)

	return domain.RunStatus{
		State:          t.state,
		TotalPages:     t.total,
		ProcessedPages: t.processed,
		Percentage:     percentage,
		CurrentFile:    t.currentFile,
		CurrentPage:    t.currentPage,
		FilePages:      filePages,
		Notices:        notices,
		StartedAt:      t.startedAt,
		FinishedAt:     t.finishedAt,
	}
}
