package merge

import (
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"stocksync_api/config/values"
	"stocksync_api/metrics"
	"stocksync_api/pkg/logger"
)

// Merger folds supplier stock records into one canonical record per SKU.
// Ingest may be called from concurrent fetchers; writes to the same key are
// serialized by the mutex and the last write wins.
type Merger struct {
	mu      sync.Mutex
	records map[string]CanonicalRecord

	multiplier decimal.Decimal
	threshold  int
	runMetrics *metrics.UpdateMetrics
	log        logger.Logger
}

func NewMerger(vals values.SyncValues, runMetrics *metrics.UpdateMetrics, log logger.Logger) *Merger {
	return &Merger{
		records:    make(map[string]CanonicalRecord),
		multiplier: decimal.NewFromFloat(vals.PriceMultiplier),
		threshold:  vals.QuantityThreshold,
		runMetrics: runMetrics,
		log:        log,
	}
}

// Ingest applies the business rules to one supplier record and stores the
// result keyed by SKU. Malformed numeric fields degrade to the documented
// defaults, they never abort the run.
func (m *Merger) Ingest(sku, stockQty, cost, price string) {
	record := CanonicalRecord{
		Sku:          sku,
		Quantity:     m.applyQuantityRule(sku, stockQty),
		Cost:         m.validateCost(sku, cost),
		SellingPrice: m.deriveSellingPrice(sku, price),
	}

	m.mu.Lock()
	m.records[sku] = record
	m.mu.Unlock()
}

func (m *Merger) applyQuantityRule(sku, stockQty string) int {
	parsed, err := strconv.ParseFloat(stockQty, 64)
	if err != nil {
		m.runMetrics.MalformedFields.Add(1)
		m.log.Log("Warning: invalid stock_qty %q for SKU %s, defaulting to 0", stockQty, sku)
		return 0
	}
	quantity := int(parsed)
	if quantity < m.threshold {
		return 0
	}
	return quantity
}

func (m *Merger) validateCost(sku, cost string) string {
	if _, err := decimal.NewFromString(cost); err != nil {
		m.runMetrics.MalformedFields.Add(1)
		m.log.Log("Warning: invalid cost %q for SKU %s, defaulting to 0.00", cost, sku)
		return "0.00"
	}
	return cost
}

func (m *Merger) deriveSellingPrice(sku, price string) string {
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		if price != "" {
			m.runMetrics.MalformedFields.Add(1)
			m.log.Log("Warning: invalid price %q for SKU %s, selling price defaults to 0", price, sku)
		}
		return "0"
	}
	return parsed.Mul(m.multiplier).Round(0).String()
}

// Finalize returns exactly one record per distinct requested SKU, in first-
// occurrence input order. SKUs the supplier never returned come back as
// out-of-stock defaults. Calling Finalize again over the same data yields an
// identical result.
func (m *Merger) Finalize(requested []string) []CanonicalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(requested))
	result := make([]CanonicalRecord, 0, len(requested))
	for _, sku := range requested {
		if _, dup := seen[sku]; dup {
			continue
		}
		seen[sku] = struct{}{}

		if record, ok := m.records[sku]; ok {
			result = append(result, record)
		} else {
			m.log.Log("SKU %s not found in supplier response, setting quantity and cost to 0", sku)
			result = append(result, DefaultRecord(sku))
		}
	}
	return result
}
