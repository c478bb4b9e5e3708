package skusource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"stocksync_api/internal/storage"
	"stocksync_api/pkg/logger"
)

// Source loads the authoritative SKU list from the input blob. The file is
// expected to be a CSV export: header row first, SKU in the first column.
type Source struct {
	storage  storage.BlobStorage
	bucket   string
	key      string
	encoding string
	log      logger.Logger
}

func NewSource(blobStorage storage.BlobStorage, bucket, key, encoding string, log logger.Logger) *Source {
	return &Source{
		storage:  blobStorage,
		bucket:   bucket,
		key:      key,
		encoding: encoding,
		log:      log,
	}
}

// LoadSkus returns the SKUs in file order. Duplicates are preserved, the
// header line is discarded, blank lines are skipped.
func (s *Source) LoadSkus(ctx context.Context) ([]string, error) {
	data, err := s.storage.Get(ctx, s.bucket, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading sku list %s/%s: %w", s.bucket, s.key, err)
	}

	var reader io.Reader = bytes.NewReader(data)
	if s.encoding == "windows-1251" {
		// some warehouse exports still arrive in the legacy codepage
		reader = transform.NewReader(reader, charmap.Windows1251.NewDecoder())
	}

	var skus []string
	scanner := bufio.NewScanner(reader)
	firstLine := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if firstLine {
			firstLine = false
			continue
		}
		if line == "" {
			continue
		}
		sku := line
		if idx := strings.Index(line, ","); idx >= 0 {
			sku = line[:idx]
		}
		sku = strings.TrimSpace(sku)
		if sku != "" {
			skus = append(skus, sku)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning sku list: %w", err)
	}

	s.log.Log("Loaded %d SKUs from %s/%s", len(skus), s.bucket, s.key)
	return skus, nil
}
