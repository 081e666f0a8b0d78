package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"locomotion/internal/calendar"
	"locomotion/internal/creators/service"
	apperrors "locomotion/pkg/errors"
	httputil "locomotion/pkg/http"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CreatorHandler struct {
	service   service.CreatorService
	log       *logger.Logger
	jwtSecret []byte
}

func NewCreatorHandler(service service.CreatorService, log *logger.Logger, jwtSecret []byte) *CreatorHandler {
	return &CreatorHandler{
		service:   service,
		log:       log,
		jwtSecret: jwtSecret,
	}
}

func (h *CreatorHandler) Onboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creator model.Creator
	if err := json.NewDecoder(r.Body).Decode(&creator); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Onboard", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.Onboard(r.Context(), identity, &creator); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Onboard", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, creator); err != nil {
		h.log.Error("failed to write created response", "handler", "Onboard", "operation", "WriteCreated", "error", err)
	}
}

func (h *CreatorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	creator, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, creator); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CreatorHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Me", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	creator, err := h.service.GetByUserID(r.Context(), identity.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Me", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, creator); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CreatorHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	city := query.Get("city")

	// Unapproved profiles are only visible to admins.
	approvedOnly := true
	if query.Get("include_unapproved") == "true" {
		identity := middleware.IdentityFromContext(r.Context())
		if identity != nil && identity.HasRole(middleware.RoleAdmin) {
			approvedOnly = false
		}
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	creators, total, err := h.service.List(r.Context(), city, approvedOnly, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, creators, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *CreatorHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.CreatorUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.Update(r.Context(), identity, id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CreatorHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Approved == nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Request body must include 'approved'",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Approve", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.Approve(r.Context(), identity, id, *body.Approved); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Approve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CreatorHandler) ToggleBlockedDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Request body must include 'date'",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ToggleBlockedDate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	blocked, err := h.service.ToggleBlockedDate(r.Context(), identity, id, body.Date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleBlockedDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"blocked_dates": blocked}); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleBlockedDate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CreatorHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	query := r.URL.Query()

	now := time.Now()
	year := now.Year()
	month := now.Month()

	if yearStr := query.Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid year parameter")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		year = parsed
	}
	if monthStr := query.Get("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid month parameter")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		month = time.Month(parsed)
	}

	mode := calendar.ModeBook
	if query.Get("mode") == string(calendar.ModeBlock) {
		mode = calendar.ModeBlock
	}

	grid, err := h.service.Availability(r.Context(), id, year, month, mode, query.Get("selected"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, grid); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CreatorHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/creators", middleware.Authenticate(h.jwtSecret, h.Onboard))
	router.GET("/api/v1/creators", middleware.OptionalAuthenticate(h.jwtSecret, h.List))
	router.GET("/api/v1/creators/me", middleware.Authenticate(h.jwtSecret, h.Me))
	router.GET("/api/v1/creators/id/:id", h.GetByID)
	router.PATCH("/api/v1/creators/id/:id", middleware.Authenticate(h.jwtSecret, h.Update))
	router.POST("/api/v1/creators/id/:id/approve", middleware.RequireRole(h.jwtSecret, middleware.RoleAdmin, h.Approve))
	router.POST("/api/v1/creators/id/:id/blocked-dates", middleware.Authenticate(h.jwtSecret, h.ToggleBlockedDate))
	router.GET("/api/v1/creators/id/:id/availability", h.Availability)
}
