package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksync_api_requests_total",
			Help: "Total number of outbound API requests.",
		},
		[]string{"target", "operation", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksync_api_request_duration_seconds",
			Help:    "Histogram of outbound API request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"target", "operation", "status"},
	)
	skusProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksync_skus_processed_total",
			Help: "SKUs pushed downstream, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(skusProcessedTotal)
}

// RecordRequest records one outbound API call. target is "supplier" or
// "neto", operation the logical endpoint name.
func RecordRequest(target, operation string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	apiRequestsTotal.WithLabelValues(target, operation, status).Inc()
	apiRequestDuration.WithLabelValues(target, operation, status).Observe(duration.Seconds())
}

func RecordSkuOutcome(success bool) {
	if success {
		skusProcessedTotal.WithLabelValues("success").Inc()
	} else {
		skusProcessedTotal.WithLabelValues("failure").Inc()
	}
}

func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
