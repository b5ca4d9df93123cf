package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	operationCounter        *prometheus.CounterVec
	invariantViolationCount prometheus.Counter
	idempotencyCounter      *prometheus.CounterVec
	batchCounter            *prometheus.CounterVec
	batchAccountsGauge      prometheus.Gauge
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Operations applied to or rejected by the ledger",
		}, []string{"kind", "outcome"})

		invariantViolationCount = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_invariant_violations_total",
			Help: "Number of accounts found with total != available + held",
		})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		batchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_batches_total",
			Help: "Batch replay outcomes",
		}, []string{"result"})

		batchAccountsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_batch_accounts",
			Help: "Number of accounts produced by the most recent batch",
		})

		prometheus.MustRegister(
			httpDurationHistogram,
			operationCounter,
			invariantViolationCount,
			idempotencyCounter,
			batchCounter,
			batchAccountsGauge,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementOperation(kind, outcome string) {
	if operationCounter == nil {
		return
	}
	operationCounter.WithLabelValues(kind, outcome).Inc()
}

func IncrementInvariantViolation() {
	if invariantViolationCount == nil {
		return
	}
	invariantViolationCount.Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementBatch(result string) {
	if batchCounter == nil {
		return
	}
	batchCounter.WithLabelValues(result).Inc()
}

func SetBatchAccounts(n int) {
	if batchAccountsGauge == nil {
		return
	}
	batchAccountsGauge.Set(float64(n))
}
