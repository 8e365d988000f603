// Package metrics defines and registers all custom Prometheus metrics for the
// writing marketplace API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register themselves with the default
// Prometheus registry via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Assignment metrics ────────────────────────────────────────────────────────

// AssignmentsCreatedTotal counts newly posted assignments.
// Label:
//   - domain: subject domain of the assignment, or "general" when unset
var AssignmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_created_total",
		Help:      "Total number of assignments posted, by subject domain.",
	},
	[]string{"domain"},
)

// AssignmentsPickedTotal counts successful job board claims.
var AssignmentsPickedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_picked_total",
		Help:      "Total number of assignments claimed by writers.",
	},
)

// PickConflictsTotal counts claims lost to another writer or rejected by a
// precondition at write time.
var PickConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pick_conflicts_total",
		Help:      "Total number of claim attempts that found the assignment already taken.",
	},
)

// AssignmentsReleasedTotal counts assignments returned to the board by the
// overdue sweep.
var AssignmentsReleasedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_released_total",
		Help:      "Total number of overdue assignments released back to the job board.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts delivery attempts per transport.
// Labels:
//   - channel: "inapp", "push", "telegram", or "email"
//   - result: "ok" or "error"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notification deliveries, by channel and result.",
	},
	[]string{"channel", "result"},
)

// NotifyQueueDepth tracks the current number of notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// WebhookEventsTotal counts gateway webhook deliveries.
// Label:
//   - result: "applied", "invalid_signature", or "error"
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of payment webhook deliveries, by outcome.",
	},
	[]string{"result"},
)

// ── Pricing metrics ───────────────────────────────────────────────────────────

// QuotesTotal counts price quotes by the source that produced the final price.
// Label:
//   - source: "rules" or "ai"
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of price quotes, by price source.",
	},
	[]string{"source"},
)

// AIEstimatesTotal counts model estimate outcomes.
// Label:
//   - result: "ok" or "error"
var AIEstimatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_estimates_total",
		Help:      "Total number of model price estimates, by outcome.",
	},
	[]string{"result"},
)
