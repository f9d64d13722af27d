// Package metrics exposes reconciliation metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quote_sync"

// SyncMetrics records sync pass outcomes and the store size.
//
// Implements ports.SyncMetrics.
type SyncMetrics struct {
	passes    *prometheus.CounterVec
	fetched   prometheus.Counter
	appended  prometheus.Counter
	duration  *prometheus.HistogramVec
	storeSize prometheus.Gauge
}

// NewSyncMetrics creates the collectors and registers them on reg.
// Registration fails if the collectors are already registered.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Reconciliation passes by outcome.",
		}, []string{"outcome"}),
		fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "fetched_quotes_total",
			Help:      "Quotes received from the remote source.",
		}),
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "appended_quotes_total",
			Help:      "Remote quotes appended to the local store.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		storeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "quotes",
			Help:      "Quotes currently held by the store.",
		}),
	}

	for _, c := range []prometheus.Collector{m.passes, m.fetched, m.appended, m.duration, m.storeSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObservePass implements ports.SyncMetrics.
func (m *SyncMetrics) ObservePass(outcome string, fetched, appended int, duration time.Duration) {
	m.passes.WithLabelValues(outcome).Inc()
	m.fetched.Add(float64(fetched))
	m.appended.Add(float64(appended))
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveStoreSize implements ports.SyncMetrics.
func (m *SyncMetrics) ObserveStoreSize(size int) {
	m.storeSize.Set(float64(size))
}
