package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetDelete(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bucket", "key", []byte("hello"), "text/plain"))

	data, err := store.Get(ctx, "bucket", "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(ctx, "bucket", "key"))
	_, err = store.Get(ctx, "bucket", "key")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "bucket", "key"), ErrNotFound)
}

// TestMemoryListPagination walks a prefix in pages via continuation tokens.
func TestMemoryListPagination(t *testing.T) {
	store := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		store.PutWithTime("bucket", fmt.Sprintf("pfx_%02d", i), []byte("x"), base.Add(time.Duration(i)*time.Minute))
	}
	store.PutWithTime("bucket", "other", []byte("x"), base)

	var all []ObjectInfo
	token := ""
	pages := 0
	for {
		page, next, err := store.List(context.Background(), "bucket", "pfx_", token, 3)
		require.NoError(t, err)
		all = append(all, page...)
		pages++
		if next == "" {
			break
		}
		token = next
	}

	assert.Equal(t, 3, pages)
	require.Len(t, all, 7)
	for i, info := range all {
		assert.Equal(t, fmt.Sprintf("pfx_%02d", i), info.Key)
		assert.Equal(t, base.Add(time.Duration(i)*time.Minute), info.LastModified)
	}
}
