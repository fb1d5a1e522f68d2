package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/results"
	"github.com/SkiltonTrading/cmrv2/internal/service"
	"github.com/SkiltonTrading/cmrv2/mocks"
)

func strp(s string) *string { return &s }

func rawNote(date, qty, unit string) domain.RawNote {
	return domain.RawNote{Date: strp(date), Quantity: strp(qty), Unit: strp(unit)}
}

func pageTask(fileName string, page int) domain.PageTask {
	return domain.PageTask{FileName: fileName, PageIndex: page, PageCount: page}
}

func TestSession_Restore_EmptySlot(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Load", mock.Anything).Return(nil, nil)

	sess := service.NewSession(state)
	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, 0, sess.Len())
}

func TestSession_Restore_LoadError(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Load", mock.Anything).Return(nil, errors.New("disk gone"))

	sess := service.NewSession(state)
	assert.Error(t, sess.Restore(context.Background()))
}

func TestSession_Restore_UnparseableStateTreatedAsEmpty(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Load", mock.Anything).Return([]byte("{not json"), nil)

	sess := service.NewSession(state)
	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, 0, sess.Len())
}

func TestSession_Restore_RehydratesDedupe(t *testing.T) {
	note := rawNote("12-08-2026", "10", "E15")
	persisted := []domain.DeliveryRow{{
		Date: "12-08-2026", Quantity: "10", Unit: "E15",
		FileName: "a.pdf", PageIndex: 1, Note: note,
	}}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)

	state := new(mocks.MockStateStore)
	state.On("Load", mock.Anything).Return(data, nil)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	require.NoError(t, sess.Restore(context.Background()))
	require.Equal(t, 1, sess.Len())

	// The same note on the same page is a duplicate after restart.
	added := sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note})
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, sess.Len())
}

func TestSession_AdmitPage_DerivesAndAppends(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	added := sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{
		rawNote("12-08-2026", "9", "E15"),
		rawNote("13-08-2026", "4", "M20"),
	})

	assert.Equal(t, 2, added)
	rows := sess.Snapshot()
	require.Len(t, rows, 2)
	assert.Equal(t, "12-08-2026", rows[0].Date)
	require.NotNil(t, rows[0].AdjustedQuantity)
	assert.Equal(t, 5, *rows[0].AdjustedQuantity) // 9/2 rounded half-up
	assert.Equal(t, domain.PalletBlok, rows[1].Pallet)
	assert.False(t, rows[0].CreatedAt.IsZero())

	state.AssertNumberOfCalls(t, "Save", 1)
}

func TestSession_AdmitPage_DropsDuplicateKeySilently(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	note := rawNote("12-08-2026", "10", "E15")

	added := sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note, note})
	assert.Equal(t, 1, added)
	require.Equal(t, 1, sess.Len())

	// Re-running the page adds nothing and persists nothing.
	added = sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note})
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, sess.Len())
	state.AssertNumberOfCalls(t, "Save", 1)

	// No duplicate marker appears on the surviving row.
	assert.False(t, sess.Snapshot()[0].Duplicate)
}

func TestSession_AdmitPage_SameNoteOnOtherPageAccepted(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	note := rawNote("12-08-2026", "10", "E15")

	assert.Equal(t, 1, sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note}))
	assert.Equal(t, 1, sess.AdmitPage(context.Background(), pageTask("a.pdf", 2), []domain.RawNote{note}))
	assert.Equal(t, 2, sess.Len())
}

func TestSession_AdmitPage_PersistFailureDoesNotFailPage(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	sess := service.NewSession(state)
	added := sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{
		rawNote("12-08-2026", "10", "E15"),
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, sess.Len())
}

func TestSession_Clear_EmptiesRowsAndDedupeTogether(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	note := rawNote("12-08-2026", "10", "E15")
	require.Equal(t, 1, sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note}))

	sess.Clear(context.Background())

	assert.Equal(t, 0, sess.Len())
	// The key is open again after clearing.
	assert.Equal(t, 1, sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{note}))

	// Clear persisted the empty table.
	calls := state.Calls
	var sawEmpty bool
	for _, c := range calls {
		if c.Method == "Save" {
			if string(c.Arguments.Get(1).([]byte)) == "[]" {
				sawEmpty = true
			}
		}
	}
	assert.True(t, sawEmpty, "expected an empty-table save")
}

func TestSession_List_PassesThroughOptions(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{
		rawNote("2026-08-02", "2", "E15"),
		rawNote("2026-08-01", "1", "E20"),
	})

	rows, err := sess.List(results.ListOptions{SortField: "date"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-08-01", rows[0].Date)

	_, err = sess.List(results.ListOptions{SortField: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidSort)
}

func TestSession_Stats(t *testing.T) {
	state := new(mocks.MockStateStore)
	state.On("Save", mock.Anything, mock.Anything).Return(nil)

	sess := service.NewSession(state)
	sess.AdmitPage(context.Background(), pageTask("a.pdf", 1), []domain.RawNote{
		rawNote("12-08-2026", "10", "E15"), // EURO, adjusted 5
		rawNote("12-08-2026", "8", "M15"),  // BLOK, adjusted 4
		rawNote("12-08-2026", "", "E15"),   // warning row, no quantity
	})

	stats := sess.Stats()
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 1, stats.RowsWithWarnings)
	assert.Equal(t, 2, stats.EuroPallets)
	assert.Equal(t, 1, stats.BlokPallets)
	assert.Equal(t, 9, stats.AdjustedTotal)
}
