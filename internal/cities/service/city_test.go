package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizbranches/internal/courier"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func TestCitiesFallbackWithoutCourier(t *testing.T) {
	svc := NewCityService(nil, testLogger())

	cities := svc.Cities(context.Background(), "")

	require.Len(t, cities, 10)
	assert.Equal(t, model.CityRef{ID: "lahore", Name: "Lahore"}, cities[0])
}

func TestCitiesFromCourier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
		case "/cities":
			// Mixed upstream schemas in one payload.
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"CityId": "lhr", "CityName": "Lahore"},
				{"city_id": "khi", "city_name": "Karachi"},
				{"id": "isb", "name": "Islamabad"},
				{"CityName": "No ID"},
			})
		}
	}))
	defer server.Close()

	svc := NewCityService(courier.NewClient(server.URL, "u", "p", testLogger()), testLogger())

	cities := svc.Cities(context.Background(), "")

	assert.Equal(t, []model.CityRef{
		{ID: "lhr", Name: "Lahore"},
		{ID: "khi", Name: "Karachi"},
		{ID: "isb", Name: "Islamabad"},
	}, cities)
}

func TestCitiesFallbackOnCourierFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewCityService(courier.NewClient(server.URL, "u", "p", testLogger()), testLogger())

	cities := svc.Cities(context.Background(), "")

	require.Len(t, cities, 10, "upstream failure degrades to the static list")
}

func TestProvincesStatic(t *testing.T) {
	svc := NewCityService(nil, testLogger())

	provinces := svc.Provinces()

	require.Len(t, provinces, 6)
	assert.Equal(t, "Punjab", provinces[0].Name)
}

func TestAreasRequireCityID(t *testing.T) {
	svc := NewCityService(nil, testLogger())

	_, err := svc.Areas(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestAreasWithoutCourier(t *testing.T) {
	svc := NewCityService(nil, testLogger())

	areas, err := svc.Areas(context.Background(), "lhr")

	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestAreasUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewCityService(courier.NewClient(server.URL, "u", "p", testLogger()), testLogger())

	_, err := svc.Areas(context.Background(), "lhr")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstream, apperrors.AsAppError(err).Code)
}
