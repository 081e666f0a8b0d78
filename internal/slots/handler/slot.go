package handler

import (
	"encoding/json"
	"net/http"

	"locomotion/internal/slots/service"
	apperrors "locomotion/pkg/errors"
	httputil "locomotion/pkg/http"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service   service.SlotService
	log       *logger.Logger
	jwtSecret []byte
}

func NewSlotHandler(service service.SlotService, log *logger.Logger, jwtSecret []byte) *SlotHandler {
	return &SlotHandler{
		service:   service,
		log:       log,
		jwtSecret: jwtSecret,
	}
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var slot model.AdSlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.Create(r.Context(), identity, &slot); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, slot); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *SlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	slot, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	creatorID := query.Get("creator_id")
	if creatorID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("The 'creator_id' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	onlyAvailable := query.Get("available") == "true"

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, total, err := h.service.ListByCreator(r.Context(), creatorID, onlyAvailable, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, slots, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *SlotHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		Available *bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Available == nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Request body must include 'available'",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetAvailability", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.SetAvailability(r.Context(), identity, id, *body.Available); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/slots", middleware.Authenticate(h.jwtSecret, h.Create))
	router.GET("/api/v1/slots", h.List)
	router.GET("/api/v1/slots/id/:id", h.GetByID)
	router.PATCH("/api/v1/slots/id/:id/availability", middleware.Authenticate(h.jwtSecret, h.SetAvailability))
	router.DELETE("/api/v1/slots/id/:id", middleware.Authenticate(h.jwtSecret, h.Delete))
}
