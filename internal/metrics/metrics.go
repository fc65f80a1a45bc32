// ABOUTME: Prometheus collectors for canister call traffic and chat handling.
// ABOUTME: Implements the canister client's observer extension points.

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/degov-labs/degov-oracle/internal/canister"
)

// Metrics holds the oracle's Prometheus collectors. It implements
// canister.Observer so it can be installed on the client directly.
type Metrics struct {
	registry *prometheus.Registry

	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	failuresTotal *prometheus.CounterVec
	messagesTotal *prometheus.CounterVec
}

// New builds a metrics set on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "degov",
				Subsystem: "canister",
				Name:      "calls_total",
				Help:      "Total canister calls issued",
			},
			[]string{"method", "kind"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "degov",
				Subsystem: "canister",
				Name:      "call_duration_seconds",
				Help:      "Canister call round-trip latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "kind"},
		),
		failuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "degov",
				Subsystem: "canister",
				Name:      "call_failures_total",
				Help:      "Canister call failures by failure type",
			},
			[]string{"method", "type"},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "degov",
				Subsystem: "chat",
				Name:      "messages_total",
				Help:      "Chat messages handled by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MessageHandled counts one inbound chat message by outcome
// (e.g. "replied", "duplicate", "rate_limited").
func (m *Metrics) MessageHandled(outcome string) {
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

// RequestIssued implements canister.Observer.
func (m *Metrics) RequestIssued(method string, kind canister.CallKind) {
	m.callsTotal.WithLabelValues(method, string(kind)).Inc()
}

// ReplyReceived implements canister.Observer.
func (m *Metrics) ReplyReceived(method string, kind canister.CallKind, elapsed time.Duration) {
	m.callDuration.WithLabelValues(method, string(kind)).Observe(elapsed.Seconds())
}

// FailureClassified implements canister.Observer.
func (m *Metrics) FailureClassified(method string, err error) {
	m.failuresTotal.WithLabelValues(method, failureType(err)).Inc()
}

// failureType maps a client error to its taxonomy label.
func failureType(err error) string {
	var (
		encoding    *canister.EncodingError
		timeout     *canister.TransportTimeout
		transport   *canister.TransportError
		decoding    *canister.DecodingError
		rejection   *canister.CanisterRejection
		application *canister.ApplicationError
	)
	switch {
	case errors.As(err, &encoding):
		return "encoding"
	case errors.As(err, &timeout):
		return "transport_timeout"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &decoding):
		return "decoding"
	case errors.As(err, &rejection):
		return "canister_rejection"
	case errors.As(err, &application):
		return "application"
	default:
		return "other"
	}
}
