// Package metrics defines and registers all custom Prometheus metrics for the
// account portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto; HTTP request metrics come from the
// echoprometheus middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account_portal"

// ── Sign-in metrics ───────────────────────────────────────────────────────────

// SignInTotal counts completed sign-in attempts.
// Labels:
//   - provider: "credentials", "google", "passkey"
//   - outcome: "granted", "onboarding", "denied", "error"
var SignInTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_total",
		Help:      "Total number of sign-in attempts, by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// AuthorizationFailuresTotal counts rejected provider-level authorizations
// (bad password, failed ceremony, provider error) before the sign-in gate.
// Label:
//   - provider: "credentials", "google", "passkey"
var AuthorizationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_failures_total",
		Help:      "Total number of failed provider authorizations.",
	},
	[]string{"provider"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsProcessedTotal counts auth events persisted successfully.
// Label:
//   - kind: "signIn", "signOut", "createUser", "linkAccount"
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of auth events successfully processed.",
	},
	[]string{"kind"},
)

// EventsErrorsTotal counts auth events that failed or were dropped.
// Label:
//   - reason: "insert_failed", "queue_full"
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of auth events that failed processing or were dropped.",
	},
	[]string{"reason"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
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

// EventProcessingDuration measures how long a single event takes to persist.
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of auth event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
