package handler

import (
	"encoding/json"
	"net/http"

	"locomotion/internal/bookings/repository"
	"locomotion/internal/bookings/service"
	httputil "locomotion/pkg/http"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	log       *logger.Logger
	jwtSecret []byte
}

func NewBookingHandler(service service.BookingService, log *logger.Logger, jwtSecret []byte) *BookingHandler {
	return &BookingHandler{
		service:   service,
		log:       log,
		jwtSecret: jwtSecret,
	}
}

func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var checkout model.Checkout
	if err := json.NewDecoder(r.Body).Decode(&checkout); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Checkout", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	booking, err := h.service.Checkout(r.Context(), identity, &checkout)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Checkout", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Checkout", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	identity := middleware.IdentityFromContext(r.Context())
	booking, err := h.service.GetByID(r.Context(), identity, id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListMine", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	bookings, total, err := h.service.ListForBusiness(r.Context(), identity, extractFilter(r), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListMine", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) ListForCreator(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	creatorID := ps.ByName("id")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForCreator", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	bookings, total, err := h.service.ListForCreator(r.Context(), identity, creatorID, extractFilter(r), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForCreator", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListForCreator", "operation", "WritePaginated", "error", err)
	}
}

// extractFilter reads the optional status and review query parameters.
// Values are validated in the service.
func extractFilter(r *http.Request) repository.Filter {
	query := r.URL.Query()
	return repository.Filter{
		Status: query.Get("status"),
		Review: query.Get("review"),
	}
}

func (h *BookingHandler) SubmitProof(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		ProofURL string `json:"proof_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProofURL == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Request body must include 'proof_url'",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SubmitProof", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	booking, err := h.service.SubmitProof(r.Context(), identity, id, body.ProofURL)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SubmitProof", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SubmitProof", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	identity := middleware.IdentityFromContext(r.Context())
	booking, err := h.service.Complete(r.Context(), identity, id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Complete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Complete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/checkout", middleware.Authenticate(h.jwtSecret, h.Checkout))
	router.GET("/api/v1/bookings", middleware.Authenticate(h.jwtSecret, h.ListMine))
	router.GET("/api/v1/bookings/id/:id", middleware.Authenticate(h.jwtSecret, h.GetByID))
	router.GET("/api/v1/bookings/creator/:id", middleware.Authenticate(h.jwtSecret, h.ListForCreator))
	router.POST("/api/v1/bookings/id/:id/proof", middleware.Authenticate(h.jwtSecret, h.SubmitProof))
	router.POST("/api/v1/bookings/id/:id/complete", middleware.RequireRole(h.jwtSecret, middleware.RoleAdmin, h.Complete))
}
