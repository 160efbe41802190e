package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tms/pkg/db/memory"
	"tms/pkg/logger"
	"tms/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReady(t *testing.T) {
	log := logger.Discard()

	tests := []struct {
		name    string
		storage interface{ Ping(context.Context) error }
		want    int
	}{
		{"memory store", memory.New(), http.StatusOK},
		{"unreachable", MongoPinger(func(context.Context) error { return errors.New("no reachable servers") }), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.storage, nil, log), "/ready")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	log := logger.Discard()
	collector := metrics.NewCollector(prometheus.NewRegistry())
	collector.RecordTransaction("accept", metrics.OutcomeOK)
	h := NewHandler(memory.New(), collector, log)

	assert.Equal(t, http.StatusOK, serve(h, "/health").Code)

	rec := serve(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tms_booking_transactions_total"))
}
