package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_RecordTransaction(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTransaction("accept", OutcomeOK)
	c.RecordTransaction("accept", OutcomeOK)
	c.RecordTransaction("accept", "CONFLICT")

	assert.Equal(t, 2.0, counterValue(t, reg, "tms_booking_transactions_total", map[string]string{"operation": "accept", "outcome": OutcomeOK}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tms_booking_transactions_total", map[string]string{"operation": "accept", "outcome": "CONFLICT"}))
}

func TestCollector_RecordEventPublished(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEventPublished("booking.confirmed", nil)
	c.RecordEventPublished("booking.confirmed", errors.New("broker down"))

	assert.Equal(t, 1.0, counterValue(t, reg, "tms_events_published_total", map[string]string{"event_type": "booking.confirmed", "result": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tms_events_published_total", map[string]string{"event_type": "booking.confirmed", "result": "error"}))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordTransaction("accept", OutcomeOK)
		c.RecordCapacityRejection(PhaseLoad)
		c.RecordEventPublished("x", nil)
		c.ObserveHTTPRequest(http.MethodGet, "/load", 200, time.Millisecond)
	})
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCapacityRejection(PhaseTransporter)
	c.ObserveHTTPRequest(http.MethodPost, "/booking", http.StatusCreated, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tms_capacity_rejections_total{phase="transporter"} 1`))
	assert.True(t, strings.Contains(body, `tms_http_requests_total{method="POST",route="/booking",status="201"} 1`))
}
