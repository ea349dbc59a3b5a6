package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizbranches/internal/businesses/service"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	service.BusinessService

	getBySlug   func(ctx context.Context, slug string) (*model.Business, error)
	list        func(ctx context.Context, p service.ListParams) (*service.ListResult, error)
	listPending func(ctx context.Context, page, limit int) (*service.ListResult, error)
	related     func(ctx context.Context, category, city, excludeSlug string) ([]*model.Business, error)
	moderate    func(ctx context.Context, id, status string) (int64, error)
}

func (s *stubService) GetBySlug(ctx context.Context, slug string) (*model.Business, error) {
	return s.getBySlug(ctx, slug)
}

func (s *stubService) List(ctx context.Context, p service.ListParams) (*service.ListResult, error) {
	return s.list(ctx, p)
}

func (s *stubService) ListPending(ctx context.Context, page, limit int) (*service.ListResult, error) {
	return s.listPending(ctx, page, limit)
}

func (s *stubService) Related(ctx context.Context, category, city, excludeSlug string) ([]*model.Business, error) {
	return s.related(ctx, category, city, excludeSlug)
}

func (s *stubService) Moderate(ctx context.Context, id, status string) (int64, error) {
	return s.moderate(ctx, id, status)
}

func newTestRouter(svc service.BusinessService, adminSecret string) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	router := httprouter.New()
	NewBusinessHandler(svc, adminSecret, log).RegisterRoutes(router)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetBySlugDispatchesReservedNames(t *testing.T) {
	pendingCalled := false
	relatedCalled := false
	svc := &stubService{
		listPending: func(context.Context, int, int) (*service.ListResult, error) {
			pendingCalled = true
			return &service.ListResult{Page: 1, Limit: 20}, nil
		},
		related: func(_ context.Context, category, city, excludeSlug string) ([]*model.Business, error) {
			relatedCalled = true
			assert.Equal(t, "salon", category)
			assert.Equal(t, "lahore", city)
			assert.Equal(t, "skip-me", excludeSlug)
			return nil, nil
		},
		getBySlug: func(_ context.Context, slug string) (*model.Business, error) {
			return &model.Business{Slug: slug, Status: model.StatusApproved}, nil
		},
	}
	router := newTestRouter(svc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business/pending", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, pendingCalled)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business/related?category=salon&city=lahore&excludeSlug=skip-me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, relatedCalled)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business/al-noor-traders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, body["business"])
}

func TestListEnvelope(t *testing.T) {
	svc := &stubService{
		list: func(_ context.Context, p service.ListParams) (*service.ListResult, error) {
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 10, p.Limit)
			assert.Equal(t, "karachi", p.City)
			return &service.ListResult{
				Businesses: []*model.Business{{Name: "A"}},
				Total:      21,
				Page:       2,
				Limit:      10,
			}, nil
		},
	}
	router := newTestRouter(svc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business?page=2&limit=10&city=karachi", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(21), body["total"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))
}

func TestModerateRequiresConfiguredSecret(t *testing.T) {
	router := newTestRouter(&stubService{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/api/business", strings.NewReader(`{"id":"x","status":"approved"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestModerateAuth(t *testing.T) {
	svc := &stubService{
		moderate: func(_ context.Context, id, status string) (int64, error) {
			assert.Equal(t, "abc", id)
			assert.Equal(t, "approved", status)
			return 1, nil
		},
	}
	router := newTestRouter(svc, "s3cret")

	body := `{"id":"abc","status":"approved"}`

	t.Run("no credential", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("PATCH", "/api/business", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong credential", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/business", strings.NewReader(body))
		req.Header.Set("x-admin-secret", "wrong")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("header credential", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/business", strings.NewReader(body))
		req.Header.Set("x-admin-secret", "s3cret")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["modifiedCount"])
	})

	t.Run("bearer credential", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/business", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer s3cret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetBySlugNotFound(t *testing.T) {
	svc := &stubService{
		getBySlug: func(context.Context, string) (*model.Business, error) {
			return nil, apperrors.NotFound("Business")
		},
	}
	router := newTestRouter(svc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Business not found", body["error"])
}

func TestPendingIsNeverCached(t *testing.T) {
	svc := &stubService{
		listPending: func(context.Context, int, int) (*service.ListResult, error) {
			return &service.ListResult{Page: 1, Limit: 20}, nil
		},
	}
	router := newTestRouter(svc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/business/pending", nil))

	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}
