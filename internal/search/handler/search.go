package handler

import (
	"net/http"

	"bizbranches/internal/search/service"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SearchHandler struct {
	suggester *service.Suggester
	log       *logger.Logger
}

func NewSearchHandler(suggester *service.Suggester, log *logger.Logger) *SearchHandler {
	return &SearchHandler{suggester: suggester, log: log}
}

func (h *SearchHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/search", h.Suggest)
}

func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	suggestions := h.suggester.Suggest(r.Context(), r.URL.Query().Get("q"))

	httpx.CachePublic(w, 60, 300)
	if err := httpx.WriteOK(w, http.StatusOK, httpx.Fields{
		"businesses": suggestions.Businesses,
		"categories": suggestions.Categories,
	}); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}
