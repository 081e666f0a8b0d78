package handler

import (
	"net/http"

	apperrors "locomotion/pkg/errors"
	httputil "locomotion/pkg/http"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// IdentityHandler exposes the authenticated caller's token claims.
// Clients use it to decide which of the marketplace views to render.
type IdentityHandler struct {
	log       *logger.Logger
	jwtSecret []byte
}

func NewIdentityHandler(log *logger.Logger, jwtSecret []byte) *IdentityHandler {
	return &IdentityHandler{
		log:       log,
		jwtSecret: jwtSecret,
	}
}

func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Me", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, identity); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *IdentityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/me", middleware.Authenticate(h.jwtSecret, h.Me))
}
