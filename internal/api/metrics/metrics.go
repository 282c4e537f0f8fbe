// Package metrics defines and registers all custom Prometheus metrics for the
// attendance API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through
// promauto on package init.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

const namespace = "attendance"

// ── Attendance metrics ───────────────────────────────────────────────────────

// MarksTotal counts successful marks.
// Labels:
//   - outcome: "created" or "updated"
//   - status: "office", "home" or "leave"
var MarksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marks_total",
		Help:      "Total number of attendance marks accepted, by outcome and status.",
	},
	[]string{"outcome", "status"},
)

// MarksRolledTotal counts marks moved to the next working day by the cutoff.
var MarksRolledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marks_rolled_total",
		Help:      "Total number of marks made after the cutoff and applied to the next day.",
	},
)

// RejectionsTotal counts marks or deletes refused by a business rule.
// Label:
//   - code: the rule code (e.g. "weekend_marking", "past_date_restricted")
var RejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "Total number of attendance requests rejected by a rule, by code.",
	},
	[]string{"code"},
)

// ── Headcount metrics ────────────────────────────────────────────────────────

// HeadcountRunsTotal counts notifier runs.
// Label:
//   - result: "sent", "skipped_weekend", "skipped_already_sent" or "error"
var HeadcountRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "headcount_runs_total",
		Help:      "Total number of headcount notifier runs, by result.",
	},
	[]string{"result"},
)

// HeadcountOfficeCount is the office count sent by the last run.
var HeadcountOfficeCount = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "headcount_office_count",
		Help:      "Office headcount reported by the most recent notifier run.",
	},
)

// HeadcountRunDuration measures a notifier run end to end.
var HeadcountRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "headcount_run_duration_seconds",
		Help:      "Duration of a headcount notifier run.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Delivery metrics ─────────────────────────────────────────────────────────

// DeliveriesTotal counts notification deliveries.
// Labels:
//   - channel: "push" or "email"
//   - result: "sent" or "failed"
var DeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Total number of notification deliveries, by channel and result.",
	},
	[]string{"channel", "result"},
)

// DeliveryDuration measures a single provider call.
// Label:
//   - channel: "push" or "email"
var DeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_duration_seconds",
		Help:      "Duration of a single notification delivery.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"channel"},
)

// DispatchQueueDepth tracks deliveries still pending per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var DispatchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_depth",
		Help:      "Current number of deliveries pending in each dispatcher worker.",
	},
	[]string{"worker_id"},
)

// ObserveHeadcount records one notifier run, scheduled or manual.
func ObserveHeadcount(summary *domain.NotifySummary, err error, elapsed time.Duration) {
	HeadcountRunDuration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		HeadcountRunsTotal.WithLabelValues("error").Inc()
	case summary.Skipped:
		HeadcountRunsTotal.WithLabelValues("skipped_" + summary.SkipReason).Inc()
	default:
		HeadcountRunsTotal.WithLabelValues("sent").Inc()
		HeadcountOfficeCount.Set(float64(summary.OfficeCount))
	}
}
