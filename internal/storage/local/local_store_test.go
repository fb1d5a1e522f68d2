package local_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/storage/local"
)

func TestStore_PutFetchDelete(t *testing.T) {
	store := local.NewStore(t.TempDir())
	content := []byte("%PDF-1.4 queued document")

	err := store.Put(context.Background(), port.StoreInput{
		Key:         "queue/abc/cmr.pdf",
		Body:        bytes.NewReader(content),
		ContentType: "application/pdf",
		Size:        int64(len(content)),
	})
	require.NoError(t, err)

	got, err := store.Fetch(context.Background(), "queue/abc/cmr.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(context.Background(), "queue/abc/cmr.pdf"))

	_, err = store.Fetch(context.Background(), "queue/abc/cmr.pdf")
	assert.Error(t, err)
}

func TestStore_Delete_MissingKeyTolerated(t *testing.T) {
	store := local.NewStore(t.TempDir())

	assert.NoError(t, store.Delete(context.Background(), "queue/never/was.pdf"))
}

func TestStore_RejectsEscapingKey(t *testing.T) {
	store := local.NewStore(t.TempDir())

	_, err := store.Fetch(context.Background(), "../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes storage root")
}
