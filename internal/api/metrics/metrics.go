// Package metrics defines the custom Prometheus metrics for the courier
// webhook receiver. It is the single source of truth for metric names,
// labels, and help strings; metrics register with the default registry at
// package import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webhook"

// WebhooksReceivedTotal counts status updates that were accepted and stored.
// Label:
//   - status_code: the courier status code carried by the event (e.g. "9432"),
//     or "none" when the payload has none.
var WebhooksReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "received_total",
		Help:      "Total number of status updates accepted and appended.",
	},
	[]string{"status_code"},
)

// WebhookErrorsTotal counts ingestion failures.
// Label:
//   - reason: "invalid_payload", "corrupt_record", or "store_unavailable"
var WebhookErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of status updates rejected, by reason.",
	},
	[]string{"reason"},
)

// StoreOperationDuration measures Event Store call latency.
// Label:
//   - operation: "append", "history", or "list_recent"
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of event store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// RecentCacheTotal counts recent-list cache lookups.
// Label:
//   - result: "hit" or "miss" (errors count as misses)
var RecentCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recent_cache_total",
		Help:      "Total number of recent-activity cache lookups, by result.",
	},
	[]string{"result"},
)
