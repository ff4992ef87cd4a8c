// Package metrics defines the Prometheus metrics exported by the dashboard.
//
// Metrics are registered with the default registry on import and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "evcenter_admin"

// GatewayRequestsTotal counts backend calls made through the gateway.
// Labels:
//   - resource: backend resource path (e.g. "appointments", "auth")
//   - method: gateway operation (list, get, create, update, delete, login, refresh)
//   - outcome: "ok", "client_error", "server_error" or "transport_error"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of backend API calls made through the gateway.",
	},
	[]string{"resource", "method", "outcome"},
)

// GatewayRequestDuration measures backend call latency.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of backend API calls made through the gateway.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "method"},
)

// HTTPRequestsTotal counts dashboard page requests.
// Labels:
//   - route: registered route pattern
//   - status: HTTP status code class ("2xx", "3xx", "4xx", "5xx")
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of dashboard HTTP requests.",
	},
	[]string{"route", "status"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "allowed", "login_redirect" or "home_redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"decision"},
)

// LoginsTotal counts login attempts by method and result.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts.",
	},
	[]string{"method", "result"},
)

// StatusClass buckets an HTTP status code into its class label.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
