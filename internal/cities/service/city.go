package service

import (
	"context"
	"net/url"

	"bizbranches/internal/courier"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"
)

// fallbackCities serves city selection when no courier integration is
// configured or the upstream is down.
var fallbackCities = []model.CityRef{
	{ID: "lahore", Name: "Lahore"},
	{ID: "karachi", Name: "Karachi"},
	{ID: "islamabad", Name: "Islamabad"},
	{ID: "rawalpindi", Name: "Rawalpindi"},
	{ID: "faisalabad", Name: "Faisalabad"},
	{ID: "multan", Name: "Multan"},
	{ID: "peshawar", Name: "Peshawar"},
	{ID: "quetta", Name: "Quetta"},
	{ID: "gujranwala", Name: "Gujranwala"},
	{ID: "sialkot", Name: "Sialkot"},
}

var provinces = []model.Province{
	{ID: "punjab", Name: "Punjab"},
	{ID: "sindh", Name: "Sindh"},
	{ID: "kpk", Name: "Khyber Pakhtunkhwa"},
	{ID: "balochistan", Name: "Balochistan"},
	{ID: "gb", Name: "Gilgit-Baltistan"},
	{ID: "ajk", Name: "Azad Jammu and Kashmir"},
}

// CityService serves the location pickers. The courier client is optional;
// without it cities come from the static fallback and areas are unavailable.
type CityService struct {
	courier *courier.Client
	log     *logger.Logger
}

func NewCityService(courierClient *courier.Client, log *logger.Logger) *CityService {
	return &CityService{courier: courierClient, log: log}
}

// Cities lists selectable cities, optionally filtered upstream by province.
// The static fallback ignores the filter; it exists to keep the picker
// usable, not to be precise.
func (s *CityService) Cities(ctx context.Context, provinceID string) []model.CityRef {
	if s.courier == nil {
		return fallbackCities
	}

	path := "/cities"
	if provinceID != "" {
		path += "?provinceId=" + url.QueryEscape(provinceID)
	}
	records, err := s.courier.Get(ctx, path)
	if err != nil {
		s.log.Warn("Courier city lookup failed, using fallback", "error", err)
		return fallbackCities
	}

	cities := normalizeRecords(records,
		[]string{"id", "CityId", "city_id", "code"},
		[]string{"name", "CityName", "city_name"},
	)
	if len(cities) == 0 {
		return fallbackCities
	}
	return cities
}

func (s *CityService) Provinces() []model.Province {
	return provinces
}

func (s *CityService) Areas(ctx context.Context, cityID string) ([]model.CityRef, error) {
	if cityID == "" {
		return nil, apperrors.InvalidInput("cityId is required")
	}
	if s.courier == nil {
		return []model.CityRef{}, nil
	}

	records, err := s.courier.Get(ctx, "/areas?cityId="+url.QueryEscape(cityID))
	if err != nil {
		s.log.Error("Courier area lookup failed", "city_id", cityID, "error", err)
		return nil, apperrors.Upstream("Courier", err)
	}

	return normalizeRecords(records,
		[]string{"id", "AreaId", "area_id", "code"},
		[]string{"name", "AreaName", "area_name"},
	), nil
}

// normalizeRecords maps the upstream's varying schemas onto {id, name},
// dropping records missing either field.
func normalizeRecords(records []map[string]any, idKeys, nameKeys []string) []model.CityRef {
	out := make([]model.CityRef, 0, len(records))
	for _, record := range records {
		ref := model.CityRef{
			ID:   courier.FirstString(record, idKeys...),
			Name: courier.FirstString(record, nameKeys...),
		}
		if ref.ID == "" || ref.Name == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}
