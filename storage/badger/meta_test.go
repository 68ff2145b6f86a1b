package badger

import (
	"context"
	"testing"

	"github.com/ogenlabs/hipus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMeta_Missing(t *testing.T) {
	store := newTestStore(t)

	meta, err := store.GetMeta(context.Background())
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestPutMeta_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := &core.IndexMeta{FormatVersion: core.FormatVersion, Generation: 7}
	require.NoError(t, store.PutMeta(ctx, meta))
	assert.False(t, meta.UpdatedAt.IsZero())

	loaded, err := store.GetMeta(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, core.FormatVersion, loaded.FormatVersion)
	assert.Equal(t, uint64(7), loaded.Generation)
	assert.True(t, meta.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestPutMeta_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutMeta(ctx, &core.IndexMeta{FormatVersion: 1, Generation: 1}))
	require.NoError(t, store.PutMeta(ctx, &core.IndexMeta{FormatVersion: 1, Generation: 9}))

	loaded, err := store.GetMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), loaded.Generation)
}
