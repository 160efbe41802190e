package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"tms/pkg/db"
	httputil "tms/pkg/http"
	"tms/pkg/logger"
	"tms/pkg/metrics"
)

const readyTimeout = 2 * time.Second

type Response struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}

type Handler struct {
	storage   db.Pinger
	collector *metrics.Collector
	log       *logger.Logger
}

func NewHandler(storage db.Pinger, collector *metrics.Collector, log *logger.Logger) *Handler {
	return &Handler{
		storage:   storage,
		collector: collector,
		log:       log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.log.Error("Storage health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:  "unavailable",
			Storage: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:  "ready",
		Storage: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.Handler(http.MethodGet, "/metrics", h.collector.Handler())
}

// MongoPinger adapts a Mongo client ping to db.Pinger.
type MongoPinger func(ctx context.Context) error

func (p MongoPinger) Ping(ctx context.Context) error {
	return p(ctx)
}
