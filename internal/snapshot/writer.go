package snapshot

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"stocksync_api/internal/merge"
	"stocksync_api/internal/storage"
	"stocksync_api/pkg/logger"
)

const keyTimeLayout = "20060102_150405"

var csvHeader = []string{"SKU", "Quantity", "Cost", "Selling Price"}

// Writer persists one CSV snapshot per run and prunes old ones. The put is a
// single atomic object write; an aborted run never leaves a partial
// snapshot behind.
type Writer struct {
	storage      storage.BlobStorage
	bucket       string
	prefix       string
	retention    int
	listPageSize int
	log          logger.Logger

	// Now is swappable so tests get deterministic keys.
	Now func() time.Time
}

func NewWriter(blobStorage storage.BlobStorage, bucket, prefix string, retention int, log logger.Logger) *Writer {
	return &Writer{
		storage:      blobStorage,
		bucket:       bucket,
		prefix:       prefix,
		retention:    retention,
		listPageSize: 1000,
		log:          log,
		Now:          time.Now,
	}
}

// Write renders the records as CSV and stores them under a UTC-timestamped
// key. It returns the key of the written object.
func (w *Writer) Write(ctx context.Context, records []merge.CanonicalRecord) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		row := []string{record.Sku, strconv.Itoa(record.Quantity), record.Cost, record.SellingPrice}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write csv row for %s: %w", record.Sku, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	key := fmt.Sprintf("%s_%s.csv", w.prefix, w.Now().UTC().Format(keyTimeLayout))
	if err := w.storage.Put(ctx, w.bucket, key, buf.Bytes(), "text/csv"); err != nil {
		return "", fmt.Errorf("store snapshot %s: %w", key, err)
	}

	w.log.Log("Wrote snapshot %s/%s (%d rows)", w.bucket, key, len(records))
	return key, nil
}

// Cleanup deletes everything under the prefix beyond the newest retention
// objects. The listing is paged through completely before anything is
// sorted or deleted. Cleanup is best-effort: the caller logs the returned
// error and moves on.
func (w *Writer) Cleanup(ctx context.Context) error {
	if w.retention <= 0 {
		return nil
	}

	var all []storage.ObjectInfo
	token := ""
	for {
		page, next, err := w.storage.List(ctx, w.bucket, w.prefix, token, w.listPageSize)
		if err != nil {
			return fmt.Errorf("list snapshots under %s: %w", w.prefix, err)
		}
		all = append(all, page...)
		if next == "" {
			break
		}
		token = next
	}

	if len(all) <= w.retention {
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].LastModified.After(all[j].LastModified)
	})

	deleted := 0
	for _, obj := range all[w.retention:] {
		if err := w.storage.Delete(ctx, w.bucket, obj.Key); err != nil {
			w.log.Log("Failed to delete old snapshot %s: %v", obj.Key, err)
			continue
		}
		deleted++
	}
	w.log.Log("Retention cleanup: kept %d snapshots, deleted %d", w.retention, deleted)
	return nil
}
