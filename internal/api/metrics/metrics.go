// Package metrics defines and registers all custom Prometheus metrics for the
// SmartCompute monitoring system. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartcompute"

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsProcessedTotal counts detections that completed triage successfully.
// Labels:
//   - severity: the severity band the event scored into (e.g. "high")
//   - source: the connector that reported the event (e.g. "edr_agent")
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of security events successfully triaged.",
	},
	[]string{"severity", "source"},
)

// EventsErrorsTotal counts detections that failed triage.
// Label:
//   - reason: short description of the failure (e.g. "create_failed", "lookup_failed")
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of security events that failed triage.",
	},
	[]string{"reason"},
)

// EventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var EventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures how long a single event takes to triage end-to-end.
// Label:
//   - severity: the resulting severity band, or "error" on failure
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of event triage from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"severity"},
)

// ── Incident metrics ──────────────────────────────────────────────────────────

// IncidentsOpenedTotal counts newly opened incidents.
// Labels:
//   - severity: severity the incident opened at
//   - category: threat category (e.g. "malware")
var IncidentsOpenedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incidents_opened_total",
		Help:      "Total number of incidents opened, by severity and category.",
	},
	[]string{"severity", "category"},
)

// IncidentTransitionsTotal counts lifecycle transitions applied to incidents.
// Labels:
//   - from, to: the statuses on either side of the transition
var IncidentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incident_transitions_total",
		Help:      "Total number of incident status transitions.",
	},
	[]string{"from", "to"},
)

// ── Orchestrator metrics ──────────────────────────────────────────────────────

// RoutingDecisionsTotal counts routing verdicts by action.
var RoutingDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "routing_decisions_total",
		Help:      "Total number of incident routing decisions, by action.",
	},
	[]string{"action"},
)

// ScalingDecisionsTotal counts scaling verdicts by action.
var ScalingDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scaling_decisions_total",
		Help:      "Total number of worker-pool scaling decisions, by action.",
	},
	[]string{"action"},
)

// ── Backup metrics ────────────────────────────────────────────────────────────

// BackupDuration measures the wall time of a full backup run.
// Label:
//   - status: "complete", "degraded", or "failed"
var BackupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backup_duration_seconds",
		Help:      "Duration of backup runs from export to final replication.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	},
	[]string{"status"},
)

// BackupLastSuccessTimestamp is the unix time of the last fully replicated
// backup. The distance from now is the effective RPO.
var BackupLastSuccessTimestamp = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backup_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last backup replicated to every region.",
	},
)

// BackupReplicationRetriesTotal counts replication attempts that had to be retried.
// Label:
//   - region: the replication target
var BackupReplicationRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backup_replication_retries_total",
		Help:      "Total number of retried replication attempts, by region.",
	},
	[]string{"region"},
)
