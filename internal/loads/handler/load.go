package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"tms/internal/loads/service"
	apperrors "tms/pkg/errors"
	httputil "tms/pkg/http"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type LoadHandler struct {
	service service.LoadService
	log     *logger.Logger
}

func NewLoadHandler(service service.LoadService, log *logger.Logger) *LoadHandler {
	return &LoadHandler{
		service: service,
		log:     log,
	}
}

func (h *LoadHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	load, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, load); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *LoadHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LoadHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := model.LoadFilter{
		ShipperID: strings.TrimSpace(query.Get("shipperId")),
		Status:    model.LoadStatus(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
	}

	loads, totalCount, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, loads, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *LoadHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	load, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, load); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LoadHandler) BestBids(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ranked, err := h.service.BestBids(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BestBids", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ranked); err != nil {
		h.log.Error("failed to write success response", "handler", "BestBids", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LoadHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/load", h.Create)
	router.GET("/load", h.GetAll)
	router.GET("/load/:id", h.GetByID)
	router.GET("/load/:id/best-bids", h.BestBids)
	router.PATCH("/load/:id/cancel", h.Cancel)
}
