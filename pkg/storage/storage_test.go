package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewDiskStore(root, "https://orders.example.com/files/")
	require.NoError(t, err)
	return store, root
}

func TestDiskStore_PutOpenDelete(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, "uploads/a4gp-sample.pdf", "application/pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "https://orders.example.com/files/uploads/a4gp-sample.pdf", url)

	// Bytes land under the root, in the key's subdirectory
	onDisk, err := os.ReadFile(filepath.Join(root, "uploads", "a4gp-sample.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), onDisk)

	rc, err := store.Open(ctx, "uploads/a4gp-sample.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("%PDF-1.4 test"), data)

	require.NoError(t, store.Delete(ctx, "uploads/a4gp-sample.pdf"))
	_, err = store.Open(ctx, "uploads/a4gp-sample.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStore_OverwritesExistingKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "logo.png", "image/png", []byte("v1"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "logo.png", "image/png", []byte("v2"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, "logo.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestDiskStore_RejectsTraversalKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "uploads/../../etc/passwd", ".", ""} {
		_, err := store.Put(ctx, key, "text/plain", []byte("x"))
		assert.Error(t, err, "key %q", key)

		_, err = store.Open(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestDiskStore_DeleteMissing(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Delete(context.Background(), "uploads/never-stored.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
