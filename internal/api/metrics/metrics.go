// Package metrics defines and registers all custom Prometheus metrics for the
// storefront sync engine. It is the single source of truth for metric names,
// labels, and help strings. All metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ---------------------------------------------------------------------------
// Gateway metrics
// ---------------------------------------------------------------------------

// GatewayRequestsTotal counts authority calls by operation and outcome.
// Labels:
//   - operation: gateway operation name (e.g. "create_order", "list_products")
//   - outcome: "ok" or "error" (transport failure, non-2xx, decode failure)
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of authority gateway calls, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// GatewayRequestDuration measures authority round-trip time per operation.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of authority gateway calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ---------------------------------------------------------------------------
// Order metrics
// ---------------------------------------------------------------------------

// OrdersPlacedTotal counts successfully placed orders.
var OrdersPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders successfully placed at the authority.",
	},
)

// OrdersProcessedTotal counts approve/reject decisions persisted for orders.
// Label:
//   - decision: "confirmed" or "canceled"
var OrdersProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_processed_total",
		Help:      "Total number of order status decisions persisted, by decision.",
	},
	[]string{"decision"},
)

// OrderRefreshesTotal counts wholesale order-list reconciliations.
// Label:
//   - result: "ok" or "error" (stale local state kept)
var OrderRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_refreshes_total",
		Help:      "Total number of order list refreshes against the authority, by result.",
	},
	[]string{"result"},
)
