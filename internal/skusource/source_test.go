package skusource

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"stocksync_api/internal/storage"
	"stocksync_api/pkg/logger"
)

func newTestSource(t *testing.T, content []byte, encoding string) *Source {
	t.Helper()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Put(context.Background(), "in-bucket", "skus.csv", content, "text/csv"))
	return NewSource(store, "in-bucket", "skus.csv", encoding, logger.NewLogger(io.Discard, "[test]"))
}

// TestLoadSkus: header discarded, first comma field taken, blanks skipped,
// duplicates preserved.
func TestLoadSkus(t *testing.T) {
	content := []byte("SKU,Description\nA,first product\nB,second\n\n  \nC\nA,duplicate row\n")
	source := newTestSource(t, content, "")

	skus, err := source.LoadSkus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "A"}, skus)
}

// TestLoadSkusHeaderOnly yields an empty list, which the caller treats as
// fatal.
func TestLoadSkusHeaderOnly(t *testing.T) {
	source := newTestSource(t, []byte("SKU,Description\n"), "")

	skus, err := source.LoadSkus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skus)
}

// TestLoadSkusMissingObject surfaces the storage error.
func TestLoadSkusMissingObject(t *testing.T) {
	store := storage.NewMemoryStorage()
	source := NewSource(store, "in-bucket", "missing.csv", "", logger.NewLogger(io.Discard, "[test]"))

	_, err := source.LoadSkus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// TestLoadSkusWindows1251 decodes legacy-codepage exports when configured.
func TestLoadSkusWindows1251(t *testing.T) {
	var encoded bytes.Buffer
	encoder := transform.NewWriter(&encoded, charmap.Windows1251.NewEncoder())
	_, err := io.WriteString(encoder, "SKU,Название\nАРТ-1,товар\nАРТ-2,товар\n")
	require.NoError(t, err)
	require.NoError(t, encoder.Close())

	source := newTestSource(t, encoded.Bytes(), "windows-1251")
	skus, err := source.LoadSkus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"АРТ-1", "АРТ-2"}, skus)
}
