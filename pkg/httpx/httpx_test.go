package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	apperrors "bizbranches/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/api/business", 1, 20},
		{"explicit", "/api/business?page=3&limit=50", 3, 50},
		{"limit clamped high", "/api/business?limit=5000", 1, 100},
		{"limit clamped low", "/api/business?limit=0", 1, 1},
		{"negative page ignored", "/api/business?page=-2", 1, 20},
		{"garbage ignored", "/api/business?page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, limit := ParsePagination(r)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "TotalPages(%d, %d)", tt.total, tt.limit)
	}
}

func TestWriteOKEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, 201, Fields{"id": "abc"}))

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "abc", body["id"])
}

func TestWriteErrorEnvelope(t *testing.T) {
	t.Run("app error with details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := apperrors.Validation("Validation failed", []map[string]string{{"field": "name"}})

		require.NoError(t, WriteError(w, err))

		assert.Equal(t, 400, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "Validation failed", body["error"])
		assert.NotNil(t, body["details"])
	})

	t.Run("unknown error becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteError(w, assert.AnError))

		assert.Equal(t, 500, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["ok"])
		assert.NotContains(t, body, "details")
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteError(w, apperrors.NotFound("Business")))

		assert.Equal(t, 404, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Business not found", body["error"])
	})
}
