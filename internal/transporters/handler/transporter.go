package handler

import (
	"encoding/json"
	"net/http"
	"tms/internal/transporters/service"
	apperrors "tms/pkg/errors"
	httputil "tms/pkg/http"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TransporterHandler struct {
	service service.TransporterService
	log     *logger.Logger
}

func NewTransporterHandler(service service.TransporterService, log *logger.Logger) *TransporterHandler {
	return &TransporterHandler{
		service: service,
		log:     log,
	}
}

func (h *TransporterHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TransporterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	transporter, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, transporter); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *TransporterHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transporter, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, transporter); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransporterHandler) UpdateTrucks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.UpdateTrucksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateTrucks", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	transporter, err := h.service.UpdateTrucks(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateTrucks", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, transporter); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateTrucks", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransporterHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/transporter", h.Register)
	router.GET("/transporter/:id", h.GetByID)
	router.PUT("/transporter/:id/trucks", h.UpdateTrucks)
}
