// Package metrics holds the engine's prometheus collectors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Orders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "orders_total",
		Help:      "order-entry calls by symbol, order type and resulting status",
	}, []string{"symbol", "type", "status"})

	Cancels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "cancels_total",
		Help:      "cancel calls by resulting status",
	}, []string{"status"})

	Trades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "trades_total",
		Help:      "executed transactions by symbol",
	}, []string{"symbol"})

	TradedQty = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "traded_quantity_total",
		Help:      "executed quantity by symbol",
	}, []string{"symbol"})

	StopActivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "stop_activations_total",
		Help:      "stop and stop-limit orders activated by symbol",
	}, []string{"symbol"})

	FeedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "feed_messages_total",
		Help:      "decoded feed messages by kind",
	}, []string{"kind"})

	SinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchbook",
		Name:      "sink_errors_total",
		Help:      "failed trade sink writes by sink",
	}, []string{"sink"})

	ApplyLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matchbook",
		Name:      "apply_seconds",
		Help:      "time spent applying one event to the books",
		Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
	})
)

func init() {
	prometheus.MustRegister(Orders, Cancels, Trades, TradedQty, StopActivations, FeedMessages, SinkErrors, ApplyLatency)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
