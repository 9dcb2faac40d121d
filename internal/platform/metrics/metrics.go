package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	Searches     *prometheus.CounterVec
	Marks        *prometheus.CounterVec
	MarkedOrders prometheus.Counter
	LedgerSize   prometheus.Gauge
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_lookup",
			Name:      "searches_total",
			Help:      "Searches by outcome.",
		}, []string{"outcome"}),
		Marks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_lookup",
			Name:      "marks_total",
			Help:      "Mark-delivered requests by outcome.",
		}, []string{"outcome"}),
		MarkedOrders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "order_lookup",
			Name:      "marked_orders_total",
			Help:      "Orders newly recorded as delivered.",
		}),
		LedgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "order_lookup",
			Name:      "ledger_records",
			Help:      "Records in the delivery ledger at last read or write.",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "order_lookup",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(m.Searches, m.Marks, m.MarkedOrders, m.LedgerSize, m.HTTPDuration)

	return m
}

// Noop returns metrics registered with a throwaway registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
