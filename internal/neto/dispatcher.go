package neto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"stocksync_api/internal/merge"
	"stocksync_api/metrics"
	"stocksync_api/pkg/jsondoc"
	"stocksync_api/pkg/logger"
)

// Dispatcher pushes canonical records to the commerce platform through a
// fixed-size worker pool. One record's failure never cancels its siblings;
// DispatchAll returns only after every submitted update has an outcome.
type Dispatcher struct {
	apiURL      string
	username    string
	key         string
	warehouseID string

	httpClient *http.Client
	poolSize   int
	runMetrics *metrics.UpdateMetrics
	log        logger.Logger
}

func NewDispatcher(apiURL, username, key, warehouseID string, httpClient *http.Client,
	poolSize int, runMetrics *metrics.UpdateMetrics, log logger.Logger) *Dispatcher {
	if poolSize <= 0 {
		poolSize = 10
	}
	return &Dispatcher{
		apiURL:      apiURL,
		username:    username,
		key:         key,
		warehouseID: warehouseID,
		httpClient:  httpClient,
		poolSize:    poolSize,
		runMetrics:  runMetrics,
		log:         log,
	}
}

// DispatchAll fans the records out over the worker pool and joins on full
// completion. Order of the returned outcomes is unspecified.
func (d *Dispatcher) DispatchAll(ctx context.Context, records []merge.CanonicalRecord) []UpdateOutcome {
	if len(records) == 0 {
		return nil
	}

	jobs := make(chan merge.CanonicalRecord)
	outcomes := make(chan UpdateOutcome, len(records))

	var wg sync.WaitGroup
	for i := 0; i < d.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				outcomes <- d.updateItem(ctx, record)
			}
		}()
	}

	for _, record := range records {
		jobs <- record
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	collected := make([]UpdateOutcome, 0, len(records))
	for outcome := range outcomes {
		if outcome.Success {
			d.runMetrics.UpdatedCount.Add(1)
		} else {
			d.runMetrics.FailedCount.Add(1)
		}
		metrics.RecordSkuOutcome(outcome.Success)
		collected = append(collected, outcome)
	}
	return collected
}

func (d *Dispatcher) updateItem(ctx context.Context, record merge.CanonicalRecord) UpdateOutcome {
	if d.username == "" || d.key == "" {
		return UpdateOutcome{
			Sku:    record.Sku,
			Detail: "downstream credentials not set, update skipped",
		}
	}

	payload := map[string]interface{}{
		"Item": map[string]interface{}{
			"SKU": record.Sku,
			"WarehouseQuantity": map[string]string{
				"WarehouseID": d.warehouseID,
				"Quantity":    strconv.Itoa(record.Quantity),
				"Action":      "Set",
			},
			"DefaultPrice": record.SellingPrice,
		},
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return UpdateOutcome{Sku: record.Sku, Detail: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return UpdateOutcome{Sku: record.Sku, Detail: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("NETOAPI_ACTION", "UpdateItem")
	req.Header.Set("NETOAPI_USERNAME", d.username)
	req.Header.Set("NETOAPI_KEY", d.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.log.Log("Update for SKU %s failed: %v", record.Sku, err)
		return UpdateOutcome{Sku: record.Sku, Detail: err.Error()}
	}
	defer resp.Body.Close()
	metrics.RecordRequest("neto", "UpdateItem", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UpdateOutcome{Sku: record.Sku, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		d.log.Log("Update for SKU %s returned status %d", record.Sku, resp.StatusCode)
		return UpdateOutcome{
			Sku:        record.Sku,
			StatusCode: resp.StatusCode,
			Detail:     truncate(string(body), 256),
		}
	}

	// The platform reports errors inside a 200 body; a body we cannot parse
	// is logged and counted as accepted.
	if doc, parseErr := jsondoc.Parse(body); parseErr != nil {
		d.log.Log("Could not parse update response for SKU %s: %v", record.Sku, parseErr)
	} else if ack := doc.OptString("Ack", "Success"); ack != "Success" {
		return UpdateOutcome{
			Sku:        record.Sku,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("platform ack %q", ack),
		}
	}

	d.log.Log("Updated SKU %s (qty=%d, price=%s)", record.Sku, record.Quantity, record.SellingPrice)
	return UpdateOutcome{Sku: record.Sku, Success: true, StatusCode: resp.StatusCode}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
