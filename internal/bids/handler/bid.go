package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"tms/internal/bids/service"
	apperrors "tms/pkg/errors"
	httputil "tms/pkg/http"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BidHandler struct {
	service service.BidService
	log     *logger.Logger
}

func NewBidHandler(service service.BidService, log *logger.Logger) *BidHandler {
	return &BidHandler{
		service: service,
		log:     log,
	}
}

func (h *BidHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bid, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, bid); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BidHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bid, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bid); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BidHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := model.BidFilter{
		LoadID:        strings.TrimSpace(query.Get("loadId")),
		TransporterID: strings.TrimSpace(query.Get("transporterId")),
		Status:        model.BidStatus(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
	}

	bids, totalCount, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bids, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BidHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bid, err := h.service.Reject(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reject", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bid); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BidHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bid", h.Submit)
	router.GET("/bid", h.GetAll)
	router.GET("/bid/:id", h.GetByID)
	router.PATCH("/bid/:id/reject", h.Reject)
}
