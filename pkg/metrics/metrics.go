// Package metrics exposes the service's Prometheus collectors. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tms"

const (
	OutcomeOK = "OK"

	PhaseLoad        = "load"
	PhaseTransporter = "transporter"
	PhaseSubmission  = "submission"
)

type Collector struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	bookingOutcome *prometheus.CounterVec
	capacityReject *prometheus.CounterVec
	eventsPublish  *prometheus.CounterVec
}

// NewCollector registers all collectors on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the global registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookingOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transactions_total",
			Help:      "Booking and cancellation transactions by outcome code",
		}, []string{"operation", "outcome"}),
		capacityReject: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capacity_rejections_total",
			Help:      "Capacity checks that failed, by phase",
		}, []string{"phase"}),
		eventsPublish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker, by type and result",
		}, []string{"event_type", "result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.bookingOutcome,
		c.capacityReject,
		c.eventsPublish,
	)

	return c
}

func (c *Collector) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordTransaction counts one booking-side transaction. outcome is OutcomeOK
// or the error code the caller received.
func (c *Collector) RecordTransaction(operation, outcome string) {
	if c == nil {
		return
	}
	c.bookingOutcome.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordCapacityRejection(phase string) {
	if c == nil {
		return
	}
	c.capacityReject.WithLabelValues(phase).Inc()
}

func (c *Collector) RecordEventPublished(eventType string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.eventsPublish.WithLabelValues(eventType, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
