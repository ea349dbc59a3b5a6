package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bizbranches/internal/reviews/service"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service service.ReviewService
	log     *logger.Logger
}

func NewReviewHandler(svc service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, log: log}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/reviews", h.List)
	router.POST("/api/reviews", h.Submit)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	businessRef := q.Get("businessId")
	if businessRef == "" {
		businessRef = q.Get("business")
	}

	result, err := h.service.ListForBusiness(r.Context(), businessRef)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Review reads are never cached so rating state stays fresh.
	httpx.NoStore(w)
	h.writeOK(w, http.StatusOK, httpx.Fields{
		"reviews":     result.Reviews,
		"ratingAvg":   result.RatingAvg,
		"ratingCount": result.RatingCount,
	})
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		BusinessID string          `json:"businessId"`
		Business   string          `json:"business"`
		Name       string          `json:"name"`
		Rating     json.RawMessage `json:"rating"`
		Comment    string          `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	businessRef := body.BusinessID
	if businessRef == "" {
		businessRef = body.Business
	}

	result, err := h.service.Submit(r.Context(), businessRef, body.Name, coerceRating(body.Rating), body.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.NoStore(w)
	h.writeOK(w, http.StatusOK, httpx.Fields{
		"ratingAvg":   result.RatingAvg,
		"ratingCount": result.RatingCount,
	})
}

// coerceRating accepts the rating as a JSON number or a numeric string;
// anything else becomes 0 and fails validation downstream.
func coerceRating(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

func (h *ReviewHandler) writeOK(w http.ResponseWriter, status int, payload httpx.Fields) {
	if err := httpx.WriteOK(w, status, payload); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("Failed to write error response", "error", writeErr)
	}
}
