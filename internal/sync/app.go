package sync

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocksync_api/config"
	"stocksync_api/config/values"
	"stocksync_api/internal/merge"
	"stocksync_api/internal/neto"
	"stocksync_api/internal/skusource"
	"stocksync_api/internal/snapshot"
	"stocksync_api/internal/storage"
	"stocksync_api/internal/supplier"
	"stocksync_api/metrics"
	"stocksync_api/pkg/logger"
)

// App wires one synchronization run: sku list -> supplier fetch -> merge ->
// downstream updates -> snapshot + retention -> run log. It owns the single
// shared HTTP client every outbound call goes through.
type App struct {
	cfg        *config.Config
	vals       values.SyncValues
	storage    storage.BlobStorage
	runLog     *storage.RunLogRepository // nil when the run log is disabled
	httpClient *http.Client
	log        *logger.BaseLogger
}

func NewApp(cfg *config.Config, appCfg *config.AppConfig, blobStorage storage.BlobStorage,
	runLog *storage.RunLogRepository, log *logger.BaseLogger) *App {

	vals := appCfg.Sync.Normalize()
	connectTimeout := time.Duration(vals.ConnectTimeoutMs) * time.Millisecond
	readTimeout := time.Duration(vals.ReadTimeoutMs) * time.Millisecond

	// one connection-pooled client for the whole run
	httpClient := &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}

	return &App{
		cfg:        cfg,
		vals:       vals,
		storage:    blobStorage,
		runLog:     runLog,
		httpClient: httpClient,
		log:        log,
	}
}

// Run executes one full synchronization. Fatal setup errors (auth, sku list)
// come back as errors; per-SKU and cleanup failures are logged and reported
// in the run summary instead.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := time.Now()
	runMetrics := &metrics.UpdateMetrics{}
	a.log.Log("Starting stock sync run %s", runID)

	supplierClient := supplier.NewClient(
		a.cfg.SupplierAuthURL, a.cfg.SupplierProductsURL,
		a.cfg.SupplierEmail, a.cfg.SupplierPassword,
		a.httpClient, a.vals, runMetrics, a.log.WithPrefix("[supplier]"))

	token, err := supplierClient.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("supplier authentication: %w", err)
	}
	a.log.Log("Supplier token acquired")

	source := skusource.NewSource(a.storage, a.cfg.InputBucket, a.cfg.InputKey,
		a.cfg.InputEncoding, a.log.WithPrefix("[skusource]"))
	skus, err := source.LoadSkus(ctx)
	if err != nil {
		return fmt.Errorf("loading sku list: %w", err)
	}
	if len(skus) == 0 {
		return fmt.Errorf("no SKUs found in %s/%s", a.cfg.InputBucket, a.cfg.InputKey)
	}

	merger := merge.NewMerger(a.vals, runMetrics, a.log.WithPrefix("[merge]"))

	var diagMu sync.Mutex
	var fetchErrors []error
	err = supplierClient.FetchStock(ctx, token, skus,
		func(record supplier.StockRecord) {
			merger.Ingest(record.Sku, record.StockQty, record.Cost, record.Price)
		},
		func(fetchErr error) {
			diagMu.Lock()
			fetchErrors = append(fetchErrors, fetchErr)
			diagMu.Unlock()
			a.log.Log("Supplier fetch error: %v", fetchErr)
		})
	if err != nil {
		return fmt.Errorf("supplier fetch aborted: %w", err)
	}
	a.log.Log("Fetched %d supplier records (%d failed pages)",
		runMetrics.FetchedRecords.Load(), runMetrics.FailedPages.Load())

	records := merger.Finalize(skus)
	a.log.Log("Merged %d canonical records for %d requested SKUs", len(records), len(skus))

	dispatcher := neto.NewDispatcher(
		a.cfg.NetoURL, a.cfg.NetoUsername, a.cfg.NetoKey, a.cfg.NetoWarehouseID,
		a.httpClient, a.vals.WorkerPoolSize, runMetrics, a.log.WithPrefix("[neto]"))
	outcomes := dispatcher.DispatchAll(ctx, records)

	var failures []storage.SkuFailure
	for _, outcome := range outcomes {
		if !outcome.Success {
			failures = append(failures, storage.SkuFailure{
				Sku:    outcome.Sku,
				Status: outcome.StatusCode,
				Detail: outcome.Detail,
			})
		}
	}
	a.log.Log("Dispatch complete: %d updated, %d failed",
		runMetrics.UpdatedCount.Load(), runMetrics.FailedCount.Load())

	writer := snapshot.NewWriter(a.storage, a.cfg.OutputBucket, a.cfg.OutputPrefix,
		a.vals.RetentionCount, a.log.WithPrefix("[snapshot]"))
	if a.cfg.OutputBucket != "" {
		if _, err := writer.Write(ctx, records); err != nil {
			a.log.Log("Snapshot write failed: %v", err)
		} else if err := writer.Cleanup(ctx); err != nil {
			a.log.Log("Snapshot retention cleanup failed: %v", err)
		}
	}

	summary := storage.RunSummary{
		RunID:          runID,
		StartedAt:      startedAt,
		FinishedAt:     time.Now(),
		RequestedSkus:  len(skus),
		FetchedRecords: int(runMetrics.FetchedRecords.Load()),
		UpdatedCount:   int(runMetrics.UpdatedCount.Load()),
		FailedCount:    int(runMetrics.FailedCount.Load()),
		Failures:       failures,
	}
	if a.runLog != nil {
		if err := a.runLog.InsertRun(summary); err != nil {
			a.log.Log("Run log write failed: %v", err)
		}
	}

	a.log.Log("Run %s finished in %s (requested=%d fetched=%d updated=%d failed=%d fetchErrors=%d)",
		runID, summary.FinishedAt.Sub(startedAt).Round(time.Millisecond),
		summary.RequestedSkus, summary.FetchedRecords,
		summary.UpdatedCount, summary.FailedCount, len(fetchErrors))
	return nil
}
