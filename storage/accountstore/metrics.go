package accountstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opExists     = "exists"
	opAllocate   = "allocate"
	opLoad       = "load"
	opStore      = "store"
	opStoreBatch = "store_batch"
)

// Metrics holds the collectors of an instrumented store.
type Metrics struct {
	opDuration *prometheus.HistogramVec
	opErrors   *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clmm",
			Subsystem: "accountstore",
			Name:      "operation_duration_seconds",
			Help:      "Latency of account store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"op"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clmm",
			Subsystem: "accountstore",
			Name:      "operation_errors_total",
			Help:      "Account store operations that returned an error.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.opDuration, m.opErrors)
	return m
}
