// Package metrics defines and registers the custom Prometheus metrics of the
// tenant portal. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry through promauto at
// package initialisation; the HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Route guard ───────────────────────────────────────────────────────────────

// RouteDecisionsTotal counts guard decisions.
// Label:
//   - state: "pending", "unauthenticated", "authenticated_allowed" or "authenticated_denied"
//   - outcome: "render", "redirect" or "pending"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of route guard decisions, by state and outcome.",
	},
	[]string{"state", "outcome"},
)

// ── Session ───────────────────────────────────────────────────────────────────

// SessionTransitionsTotal counts Session Store mutations.
// Label:
//   - event: "rehydrated", "rehydrate_failed", "login", "refresh", "refresh_stale", "logout",
//     "expire", "expire_stale"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"event"},
)

// ── Auth gateway ──────────────────────────────────────────────────────────────

// GatewayRequestsTotal counts upstream auth API calls.
// Labels:
//   - operation: "login", "me", "profile", "register", "change_password", "forgot_password", "logout"
//   - outcome: "ok" or the error kind (e.g. "authentication_failed", "unreachable")
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of auth API requests, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// GatewayRequestDuration measures upstream auth API latency.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of auth API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Billing ───────────────────────────────────────────────────────────────────

// QuotesTotal counts pro-rated charge quotes.
// Label:
//   - price: "configured" or "unknown"
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contract_quotes_total",
		Help:      "Total number of first-invoice quotes computed.",
	},
	[]string{"price"},
)
