package handler

import (
	"net/http"

	"bizbranches/internal/profile/service"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ProfileHandler struct {
	service *service.ProfileService
	log     *logger.Logger
}

func NewProfileHandler(svc *service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, log: log}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/profile", h.Get)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	profile, err := h.service.GetByUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("Failed to write error response", "error", writeErr)
		}
		return
	}

	httpx.CachePublic(w, 300, 3600)
	if err := httpx.WriteOK(w, http.StatusOK, httpx.Fields{"profile": profile}); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}
