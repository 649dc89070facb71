// Package metrics registers the Prometheus instruments emitted by the
// orchestrator, the embedding stack, and the batched candidate loader.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Orchestrator and search metrics.
var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "operations_total",
			Help:      "Total orchestrator operations by kind and outcome",
		},
		[]string{"operation", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vectura",
			Name:      "operation_duration_seconds",
			Help:      "Orchestrator operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SearchStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "search_strategy_total",
			Help:      "Searches routed to each strategy path",
		},
		[]string{"path"}, // "full_memory" / "indexed" / "indexed_fallback"
	)

	BatchLoadFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "batch_load_failures_total",
			Help:      "Failed candidate-batch loads during indexed search",
		},
		[]string{"reason"},
	)
)

// Embedding metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vectura",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectura",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registered bool

// Register registers every instrument against reg. Idempotent.
func Register(reg prometheus.Registerer) {
	if registered {
		return
	}
	reg.MustRegister(
		OperationsTotal,
		OperationDuration,
		SearchStrategyTotal,
		BatchLoadFailuresTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingCacheTotal,
	)
	registered = true
}
