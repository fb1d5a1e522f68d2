package progress

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

func tasksFor(fileName string, pages int) []domain.PageTask {
	tasks := make([]domain.PageTask, 0, pages)
	for p := 1; p <= pages; p++ {
		tasks = append(tasks, domain.PageTask{FileName: fileName, PageIndex: p, PageCount: pages})
	}
	return tasks
}

func TestBegin_SetsUpRun(t *testing.T) {
	tr := NewTracker()

	require.True(t, tr.Begin(tasksFor("a.pdf", 3)))

	snap := tr.Snapshot()
	assert.Equal(t, domain.RunStateRunning, snap.State)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 0, snap.ProcessedPages)
	assert.Equal(t, 0, snap.Percentage)
	assert.Equal(t, map[string]int{"a.pdf": 3}, snap.FilePages)
	require.NotNil(t, snap.StartedAt)
	assert.Nil(t, snap.FinishedAt)
}

func TestBegin_RefusedWhileRunning(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 2)))

	assert.False(t, tr.Begin(tasksFor("b.pdf", 1)))

	// The active run is untouched.
	snap := tr.Snapshot()
	assert.Equal(t, 2, snap.TotalPages)
}

func TestBegin_AllowedAgainAfterFinish(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 1)))
	tr.Advance()
	tr.Finish()

	require.True(t, tr.Begin(tasksFor("b.pdf", 4)))

	snap := tr.Snapshot()
	assert.Equal(t, 4, snap.TotalPages)
	assert.Equal(t, 0, snap.ProcessedPages)
	assert.Empty(t, snap.Notices)
	assert.Nil(t, snap.FinishedAt)
}

func TestAdvance_Percentage(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 3)))

	tr.Advance()
	assert.Equal(t, 33, tr.Snapshot().Percentage)

	tr.Advance()
	assert.Equal(t, 67, tr.Snapshot().Percentage)

	tr.Advance()
	assert.Equal(t, 100, tr.Snapshot().Percentage)
}

func TestPercentage_CappedAtHundred(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 2)))

	tr.Advance()
	tr.Advance()
	tr.Advance() // over-advance must not exceed 100

	assert.Equal(t, 100, tr.Snapshot().Percentage)
}

func TestPercentage_ZeroTotal(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0, tr.Snapshot().Percentage)
}

func TestTaskStarted_UpdatesPointers(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 3)))

	tr.TaskStarted(domain.PageTask{FileName: "a.pdf", PageIndex: 2, PageCount: 3})

	snap := tr.Snapshot()
	assert.Equal(t, "a.pdf", snap.CurrentFile)
	assert.Equal(t, 2, snap.CurrentPage)
}

func TestNotice_KeepsMostRecent(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 1)))

	for i := 0; i < maxNotices+5; i++ {
		tr.Notice(fmt.Sprintf("notice %d", i))
	}

	notices := tr.Snapshot().Notices
	require.Len(t, notices, maxNotices)
	assert.Equal(t, "notice 5", notices[0])
	assert.Equal(t, fmt.Sprintf("notice %d", maxNotices+4), notices[len(notices)-1])
}

func TestFinish_ReturnsToIdle(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.Begin(tasksFor("a.pdf", 1)))
	tr.Advance()

	tr.Finish()

	snap := tr.Snapshot()
	assert.Equal(t, domain.RunStateIdle, snap.State)
	require.NotNil(t, snap.FinishedAt)
	assert.False(t, tr.Running())
	// Counts from the finished run remain visible until the next Begin.
	assert.Equal(t, 1, snap.ProcessedPages)
}
