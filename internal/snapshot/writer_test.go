package snapshot

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksync_api/internal/merge"
	"stocksync_api/internal/storage"
	"stocksync_api/pkg/logger"
)

func newTestWriter(store *storage.MemoryStorage, retention int) *Writer {
	writer := NewWriter(store, "out-bucket", "stock_snapshot", retention, logger.NewLogger(io.Discard, "[test]"))
	writer.Now = func() time.Time {
		return time.Date(2026, 8, 31, 10, 30, 45, 0, time.UTC)
	}
	return writer
}

// TestWriteSnapshot checks the generated key and the CSV body, including
// field escaping.
func TestWriteSnapshot(t *testing.T) {
	store := storage.NewMemoryStorage()
	writer := newTestWriter(store, 5)

	key, err := writer.Write(context.Background(), []merge.CanonicalRecord{
		{Sku: "A", Quantity: 30, Cost: "5.00", SellingPrice: "14"},
		{Sku: `B,with"comma`, Quantity: 0, Cost: "0.00", SellingPrice: "0"},
	})
	require.NoError(t, err)
	assert.Equal(t, "stock_snapshot_20260831_103045.csv", key)

	data, err := store.Get(context.Background(), "out-bucket", key)
	require.NoError(t, err)
	expected := "SKU,Quantity,Cost,Selling Price\n" +
		"A,30,5.00,14\n" +
		"\"B,with\"\"comma\",0,0.00,0\n"
	assert.Equal(t, expected, string(data))
}

// TestWriteEmptySet still produces a snapshot with just the header row.
func TestWriteEmptySet(t *testing.T) {
	store := storage.NewMemoryStorage()
	writer := newTestWriter(store, 5)

	key, err := writer.Write(context.Background(), nil)
	require.NoError(t, err)

	data, err := store.Get(context.Background(), "out-bucket", key)
	require.NoError(t, err)
	assert.Equal(t, "SKU,Quantity,Cost,Selling Price\n", string(data))
}

// TestCleanupRetention: with 8 snapshots and retention 5, the 3 oldest by
// modification time are deleted and the 5 newest survive.
func TestCleanupRetention(t *testing.T) {
	store := storage.NewMemoryStorage()
	writer := newTestWriter(store, 5)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("stock_snapshot_%02d.csv", i)
		store.PutWithTime("out-bucket", key, []byte("data"), base.Add(time.Duration(i)*time.Hour))
	}
	// an unrelated object outside the prefix must never be touched
	store.PutWithTime("out-bucket", "other_file.csv", []byte("data"), base)

	require.NoError(t, writer.Cleanup(context.Background()))

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "out-bucket", fmt.Sprintf("stock_snapshot_%02d.csv", i))
		assert.ErrorIs(t, err, storage.ErrNotFound, "snapshot %d should be deleted", i)
	}
	for i := 3; i < 8; i++ {
		_, err := store.Get(context.Background(), "out-bucket", fmt.Sprintf("stock_snapshot_%02d.csv", i))
		assert.NoError(t, err, "snapshot %d should survive", i)
	}
	_, err := store.Get(context.Background(), "out-bucket", "other_file.csv")
	assert.NoError(t, err)
}

// countingStorage records how many listing pages Cleanup walked.
type countingStorage struct {
	*storage.MemoryStorage
	listCalls int
}

func (c *countingStorage) List(ctx context.Context, bucket, prefix, token string, limit int) ([]storage.ObjectInfo, string, error) {
	c.listCalls++
	return c.MemoryStorage.List(ctx, bucket, prefix, token, limit)
}

// TestCleanupPaginatesListing: the retention scan accumulates every listing
// page before sorting, so the oldest snapshots are deleted even when they
// sit on later pages.
func TestCleanupPaginatesListing(t *testing.T) {
	store := &countingStorage{MemoryStorage: storage.NewMemoryStorage()}
	writer := NewWriter(store, "out-bucket", "stock_snapshot", 5, logger.NewLogger(io.Discard, "[test]"))
	writer.listPageSize = 3

	// modification time falls as the key index rises, so the oldest objects
	// land on the last listing pages
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("stock_snapshot_%02d.csv", i)
		store.PutWithTime("out-bucket", key, []byte("data"), base.Add(-time.Duration(i)*time.Hour))
	}

	require.NoError(t, writer.Cleanup(context.Background()))
	assert.Equal(t, 3, store.listCalls)

	for i := 0; i < 5; i++ {
		_, err := store.Get(context.Background(), "out-bucket", fmt.Sprintf("stock_snapshot_%02d.csv", i))
		assert.NoError(t, err, "snapshot %d should survive", i)
	}
	for i := 5; i < 8; i++ {
		_, err := store.Get(context.Background(), "out-bucket", fmt.Sprintf("stock_snapshot_%02d.csv", i))
		assert.ErrorIs(t, err, storage.ErrNotFound, "snapshot %d should be deleted", i)
	}
}

// TestCleanupUnderRetention deletes nothing when the object count is within
// the retention budget.
func TestCleanupUnderRetention(t *testing.T) {
	store := storage.NewMemoryStorage()
	writer := newTestWriter(store, 5)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.PutWithTime("out-bucket", fmt.Sprintf("stock_snapshot_%02d.csv", i), []byte("data"), base)
	}

	require.NoError(t, writer.Cleanup(context.Background()))
	infos, _, err := store.List(context.Background(), "out-bucket", "stock_snapshot", "", 0)
	require.NoError(t, err)
	assert.Len(t, infos, 3)
}
