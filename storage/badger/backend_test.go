package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenlabs/hipus/storage"
)

func TestOpenBackend(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		backend, err := OpenBackend("", true)
		require.NoError(t, err)
		defer backend.Close()

		assert.False(t, backend.IsClosed())
	})

	t.Run("on disk", func(t *testing.T) {
		backend, err := OpenBackend(t.TempDir(), false)
		require.NoError(t, err)
		defer backend.Close()

		assert.False(t, backend.IsClosed())
	})

	t.Run("creates nested directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "store")
		backend, err := OpenBackend(path, false)
		require.NoError(t, err)
		defer backend.Close()

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("path occupied by a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := OpenBackend(path, false)
		require.Error(t, err)
	})
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("callback error aborts", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("after close", func(t *testing.T) {
		closed, err := OpenBackend("", true)
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		err = closed.WithTransaction(ctx, func(ctx context.Context) error {
			t.Fatal("callback must not run on a closed backend")
			return nil
		})
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
	})
}
