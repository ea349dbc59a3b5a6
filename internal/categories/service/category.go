package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	catErrors "bizbranches/internal/categories/errors"
	"bizbranches/internal/categories/repository"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"
	"bizbranches/pkg/slug"

	"github.com/redis/go-redis/v9"
)

// defaultSubcategories backfills curated categories that were stored without
// a subcategory breakdown.
var defaultSubcategories = map[string][]model.Subcategory{
	"beauty-salon": {
		{Name: "Hair Salon", Slug: "hair-salon"},
		{Name: "Nail Studio", Slug: "nail-studio"},
		{Name: "Spa", Slug: "spa"},
	},
	"automotive": {
		{Name: "Car Dealer", Slug: "car-dealer"},
		{Name: "Workshop", Slug: "workshop"},
		{Name: "Spare Parts", Slug: "spare-parts"},
	},
	"restaurants": {
		{Name: "Fast Food", Slug: "fast-food"},
		{Name: "BBQ", Slug: "bbq"},
		{Name: "Desi Food", Slug: "desi-food"},
	},
	"healthcare": {
		{Name: "Clinic", Slug: "clinic"},
		{Name: "Pharmacy", Slug: "pharmacy"},
		{Name: "Laboratory", Slug: "laboratory"},
	},
	"education": {
		{Name: "School", Slug: "school"},
		{Name: "Academy", Slug: "academy"},
		{Name: "Tuition Center", Slug: "tuition-center"},
	},
	"shopping": {
		{Name: "Clothing", Slug: "clothing"},
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Grocery", Slug: "grocery"},
	},
}

type ListParams struct {
	Query   string
	Limit   int
	NoCache bool
}

type CategoryService interface {
	List(ctx context.Context, p ListParams) ([]*model.Category, error)
	GetBySlug(ctx context.Context, categorySlug string, noCache bool) (*model.Category, error)
	IncrementCount(ctx context.Context, categorySlug string, delta int64) error
	Suggest(ctx context.Context, query string, limit int64) ([]*model.Category, error)
}

type categoryService struct {
	repo     repository.CategoryRepository
	cache    *redis.Client
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewCategoryService wires the read-through cache; a nil redis client
// disables caching without changing behavior.
func NewCategoryService(repo repository.CategoryRepository, cache *redis.Client, cacheTTL time.Duration, log *logger.Logger) CategoryService {
	return &categoryService{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (s *categoryService) List(ctx context.Context, p ListParams) ([]*model.Category, error) {
	p.Query = strings.TrimSpace(strings.ToLower(p.Query))
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 200 {
		p.Limit = 200
	}

	cacheKey := "categories:list:" + p.Query + ":" + strconv.Itoa(p.Limit)
	if !p.NoCache {
		if cached, ok := s.cacheGet(ctx, cacheKey); ok {
			var categories []*model.Category
			if err := json.Unmarshal(cached, &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := s.repo.List(ctx, p.Query, int64(p.Limit))
	if err != nil {
		s.log.Error("Failed to list categories", "error", err)
		return nil, apperrors.Internal("Failed to list categories", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	for _, c := range categories {
		s.normalize(c)
	}

	s.cacheSet(ctx, cacheKey, categories)
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, categorySlug string, noCache bool) (*model.Category, error) {
	categorySlug = strings.TrimSpace(strings.ToLower(categorySlug))
	if categorySlug == "" {
		return nil, apperrors.InvalidInput("slug is required")
	}

	cacheKey := "categories:slug:" + categorySlug
	if !noCache {
		if cached, ok := s.cacheGet(ctx, cacheKey); ok {
			var category model.Category
			if err := json.Unmarshal(cached, &category); err == nil {
				return &category, nil
			}
		}
	}

	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, catErrors.ErrNotFound) {
			return nil, apperrors.NotFound("Category")
		}
		s.log.Error("Failed to fetch category", "slug", categorySlug, "error", err)
		return nil, apperrors.Internal("Failed to fetch category", err)
	}
	s.normalize(category)

	s.cacheSet(ctx, cacheKey, category)
	return category, nil
}

func (s *categoryService) IncrementCount(ctx context.Context, categorySlug string, delta int64) error {
	if categorySlug == "" {
		return nil
	}
	return s.repo.IncrementCount(ctx, categorySlug, delta)
}

func (s *categoryService) Suggest(ctx context.Context, query string, limit int64) ([]*model.Category, error) {
	categories, err := s.repo.Suggest(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		s.normalize(c)
	}
	return categories, nil
}

// normalize fills derivable gaps on read: a missing slug comes from the
// name, an empty subcategory list from the curated defaults.
func (s *categoryService) normalize(c *model.Category) {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	if len(c.Subcategories) == 0 {
		if defaults, ok := defaultSubcategories[c.Slug]; ok {
			c.Subcategories = defaults
		} else {
			c.Subcategories = []model.Subcategory{}
		}
	}
}

func (s *categoryService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Category cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (s *categoryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.log.Warn("Category cache write failed", "key", key, "error", err)
	}
}
