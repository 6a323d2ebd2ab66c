package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OpAdd           = "add"
	OpCancel        = "cancel"
	OpCancelUser    = "cancel_user"
	OpCancelMinQty  = "cancel_security_min_qty"
	OpMatchingSize  = "matching_size"
	OpListOrders    = "list_orders"
	ResultOK        = "ok"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
)

var Registry = prometheus.NewRegistry()

// Operations counts cache operations by operation and outcome.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_cache_operations_total",
		Help: "Total number of order cache operations",
	},
	[]string{"op", "result"},
)

var OrdersCancelled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "order_cache_orders_cancelled_total",
		Help: "Total number of orders removed from the cache, including bulk sweeps",
	},
)

var LiveOrders = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "order_cache_live_orders",
		Help: "Number of orders currently held by the cache",
	},
)

var OperationLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "order_cache_operation_latency_seconds",
		Help:    "Latency in seconds of order cache operations",
		Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
	},
	[]string{"op"},
)

func init() {
	Registry.MustRegister(Operations, OrdersCancelled, LiveOrders, OperationLatency)
}

func Observe(op, result string, started time.Time) {
	Operations.WithLabelValues(op, result).Inc()
	OperationLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
