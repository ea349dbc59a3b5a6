package handler

import (
	"net/http"
	"strconv"

	"bizbranches/internal/categories/service"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type CategoryHandler struct {
	service service.CategoryService
	log     *logger.Logger
}

func NewCategoryHandler(svc service.CategoryService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{service: svc, log: log}
}

func (h *CategoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/categories", h.List)
}

// List serves both the category listing (?q, ?limit) and the single-category
// lookup (?slug). nocache=1 bypasses the read-through cache and disables the
// response cache headers.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	noCache := q.Get("nocache") == "1"

	if slugParam := q.Get("slug"); slugParam != "" {
		category, err := h.service.GetBySlug(r.Context(), slugParam, noCache)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.setCacheHeaders(w, noCache)
		h.writeOK(w, httpx.Fields{"category": category})
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	categories, err := h.service.List(r.Context(), service.ListParams{
		Query:   q.Get("q"),
		Limit:   limit,
		NoCache: noCache,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.setCacheHeaders(w, noCache)
	h.writeOK(w, httpx.Fields{
		"categories": categories,
		"total":      len(categories),
	})
}

func (h *CategoryHandler) setCacheHeaders(w http.ResponseWriter, noCache bool) {
	if noCache {
		httpx.NoStore(w)
		return
	}
	httpx.CachePublic(w, 3600, 86400)
}

func (h *CategoryHandler) writeOK(w http.ResponseWriter, payload httpx.Fields) {
	if err := httpx.WriteOK(w, http.StatusOK, payload); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("Failed to write error response", "error", writeErr)
	}
}
