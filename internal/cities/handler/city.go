package handler

import (
	"net/http"

	"bizbranches/internal/cities/service"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type CityHandler struct {
	service *service.CityService
	log     *logger.Logger
}

func NewCityHandler(svc *service.CityService, log *logger.Logger) *CityHandler {
	return &CityHandler{service: svc, log: log}
}

func (h *CityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/cities", h.Cities)
	router.GET("/api/provinces", h.Provinces)
	router.GET("/api/areas", h.Areas)
}

func (h *CityHandler) Cities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cities := h.service.Cities(r.Context(), r.URL.Query().Get("provinceId"))

	httpx.CachePublic(w, 3600, 86400)
	h.writeOK(w, httpx.Fields{"cities": cities})
}

func (h *CityHandler) Provinces(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httpx.CachePublic(w, 3600, 86400)
	h.writeOK(w, httpx.Fields{"provinces": h.service.Provinces()})
}

func (h *CityHandler) Areas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	areas, err := h.service.Areas(r.Context(), r.URL.Query().Get("cityId"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.CachePublic(w, 3600, 86400)
	h.writeOK(w, httpx.Fields{"areas": areas})
}

func (h *CityHandler) writeOK(w http.ResponseWriter, payload httpx.Fields) {
	if err := httpx.WriteOK(w, http.StatusOK, payload); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}

func (h *CityHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("Failed to write error response", "error", writeErr)
	}
}
