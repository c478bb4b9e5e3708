package metrics

import "sync/atomic"

// UpdateMetrics collects per-run counters from the concurrent stages.
type UpdateMetrics struct {
	FetchedRecords  atomic.Int32
	FailedPages     atomic.Int32
	MalformedFields atomic.Int32
	UpdatedCount    atomic.Int32
	FailedCount     atomic.Int32
}
