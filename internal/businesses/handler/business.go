package handler

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bizbranches/internal/businesses/service"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const maxMultipartMemory = 10 << 20 // 10MB

type BusinessHandler struct {
	service     service.BusinessService
	adminSecret string
	log         *logger.Logger
}

func NewBusinessHandler(svc service.BusinessService, adminSecret string, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{service: svc, adminSecret: adminSecret, log: log}
}

func (h *BusinessHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/business", h.List)
	router.GET("/api/business/:slug", h.GetBySlug)
	router.POST("/api/business", h.Create)
	router.POST("/api/business/check-duplicates", h.CheckDuplicates)
	router.PATCH("/api/business", h.Moderate)
}

func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit := httpx.ParsePagination(r)
	q := r.URL.Query()

	result, err := h.service.List(r.Context(), service.ListParams{
		Page:     page,
		Limit:    limit,
		Category: strings.TrimSpace(q.Get("category")),
		City:     strings.TrimSpace(q.Get("city")),
		Query:    q.Get("q"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.CachePublic(w, 300, 3600)
	h.writeList(w, result)
}

// GetBySlug also dispatches the two reserved names that share the
// /api/business/:slug position in the route tree.
func (h *BusinessHandler) GetBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slugParam := ps.ByName("slug")
	switch slugParam {
	case "pending":
		h.listPending(w, r)
		return
	case "related":
		h.related(w, r)
		return
	}

	b, err := h.service.GetBySlug(r.Context(), slugParam)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.CachePublic(w, 300, 3600)
	h.writeOK(w, http.StatusOK, httpx.Fields{"business": b})
}

func (h *BusinessHandler) listPending(w http.ResponseWriter, r *http.Request) {
	page, limit := httpx.ParsePagination(r)

	result, err := h.service.ListPending(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.NoStore(w)
	h.writeList(w, result)
}

func (h *BusinessHandler) related(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	businesses, err := h.service.Related(r.Context(),
		strings.TrimSpace(q.Get("category")),
		strings.TrimSpace(q.Get("city")),
		strings.TrimSpace(q.Get("excludeSlug")),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.CachePublic(w, 3600, 86400)
	h.writeOK(w, http.StatusOK, httpx.Fields{"businesses": businesses})
}

func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		// Plain form submissions come through without a multipart boundary.
		if err := r.ParseForm(); err != nil {
			h.writeError(w, apperrors.InvalidInput("Invalid form body"))
			return
		}
	}

	b := &model.Business{
		Name:            r.FormValue("name"),
		Category:        r.FormValue("category"),
		Subcategory:     r.FormValue("subcategory"),
		Province:        r.FormValue("province"),
		City:            r.FormValue("city"),
		Area:            r.FormValue("area"),
		PostalCode:      r.FormValue("postalCode"),
		Address:         r.FormValue("address"),
		Phone:           r.FormValue("phone"),
		ContactPerson:   r.FormValue("contactPerson"),
		WhatsApp:        r.FormValue("whatsapp"),
		Email:           r.FormValue("email"),
		Description:     r.FormValue("description"),
		WebsiteURL:      r.FormValue("websiteUrl"),
		FacebookURL:     r.FormValue("facebookUrl"),
		GmbURL:          r.FormValue("gmbUrl"),
		YoutubeURL:      r.FormValue("youtubeUrl"),
		ProfileUsername: r.FormValue("profileUsername"),
		SwiftCode:       r.FormValue("swiftCode"),
		BranchCode:      r.FormValue("branchCode"),
		CityDialingCode: r.FormValue("cityDialingCode"),
		IBAN:            r.FormValue("iban"),
		Source:          r.FormValue("source"),
	}

	logo, logoName := h.readLogo(r)

	created, err := h.service.Create(r.Context(), b, logo, logoName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.NoStore(w)
	h.writeOK(w, http.StatusCreated, httpx.Fields{
		"id":       created.ID.Hex(),
		"business": created,
	})
}

func (h *BusinessHandler) readLogo(r *http.Request) ([]byte, string) {
	if r.MultipartForm == nil {
		return nil, ""
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		return nil, ""
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return nil, ""
	}
	return data, header.Filename
}

func (h *BusinessHandler) CheckDuplicates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	matches, err := h.service.CheckDuplicates(r.Context(), body.Phone, body.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.NoStore(w)
	h.writeOK(w, http.StatusOK, httpx.Fields{
		"duplicate": len(matches) > 0,
		"matches":   matches,
	})
}

func (h *BusinessHandler) Moderate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.adminSecret == "" {
		h.writeError(w, apperrors.Internal("Missing admin secret configuration", nil))
		return
	}
	if !h.authorized(r) {
		h.writeError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	modified, err := h.service.Moderate(r.Context(), body.ID, body.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.NoStore(w)
	h.writeOK(w, http.StatusOK, httpx.Fields{"modifiedCount": modified})
}

// authorized accepts the credential from x-admin-secret or a bearer token
// and compares in constant time.
func (h *BusinessHandler) authorized(r *http.Request) bool {
	credential := r.Header.Get("x-admin-secret")
	if credential == "" {
		bearer := r.Header.Get("Authorization")
		if strings.HasPrefix(bearer, "Bearer ") {
			credential = strings.TrimPrefix(bearer, "Bearer ")
		}
	}
	if credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(h.adminSecret)) == 1
}

func (h *BusinessHandler) writeList(w http.ResponseWriter, result *service.ListResult) {
	h.writeOK(w, http.StatusOK, httpx.Fields{
		"businesses": result.Businesses,
		"total":      result.Total,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": httpx.TotalPages(result.Total, result.Limit),
	})
}

func (h *BusinessHandler) writeOK(w http.ResponseWriter, status int, payload httpx.Fields) {
	if err := httpx.WriteOK(w, status, payload); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}

func (h *BusinessHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("Failed to write error response", "error", writeErr)
	}
}
