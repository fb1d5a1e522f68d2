package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/statestore/file"
)

func TestStore_Load_MissingFile(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "rows.json"))

	data, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "rows.json")
	store := file.NewStore(path)

	require.NoError(t, store.Save(context.Background(), []byte(`[{"unit":"E15"}]`)))

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"unit":"E15"}]`, string(data))
}

func TestStore_Save_RewritesSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	store := file.NewStore(path)

	require.NoError(t, store.Save(context.Background(), []byte(`["old"]`)))
	require.NoError(t, store.Save(context.Background(), []byte(`[]`)))

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// No temp file left behind after the rename.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
