package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics. mode is "public", "nearby" or "owned".
var (
	SearchBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Name:      "search_batches_total",
			Help:      "Store batches issued by contact searches",
		},
		[]string{"mode"},
	)

	SearchScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Name:      "search_scanned_total",
			Help:      "Records read from the store by contact searches",
		},
		[]string{"mode"},
	)

	SearchAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agenda",
			Name:      "search_accepted_total",
			Help:      "Records returned to callers by contact searches",
		},
		[]string{"mode"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agenda",
			Name:      "search_duration_seconds",
			Help:      "Contact search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchBatchesTotal)
	prometheus.MustRegister(SearchScannedTotal)
	prometheus.MustRegister(SearchAcceptedTotal)
	prometheus.MustRegister(SearchDuration)
	searchMetricsRegistered = true
}
