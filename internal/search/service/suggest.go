package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	bizrepo "bizbranches/internal/businesses/repository"
	"bizbranches/internal/media"
	"bizbranches/internal/search/rank"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"
)

const (
	businessSuggestLimit = 5
	categorySuggestLimit = 3
)

// CategorySuggester is the slice of the category service the suggester
// needs.
type CategorySuggester interface {
	Suggest(ctx context.Context, query string, limit int64) ([]*model.Category, error)
}

// BusinessSuggestion is the trimmed typeahead shape.
type BusinessSuggestion struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	City     string `json:"city,omitempty"`
	Category string `json:"category,omitempty"`
	LogoURL  string `json:"logoUrl,omitempty"`
}

type CategorySuggestion struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

type Suggestions struct {
	Businesses []BusinessSuggestion `json:"businesses"`
	Categories []CategorySuggestion `json:"categories"`
}

type Suggester struct {
	businesses bizrepo.BusinessRepository
	categories CategorySuggester
	resolver   *media.Resolver
	budget     time.Duration
	log        *logger.Logger
}

func NewSuggester(businesses bizrepo.BusinessRepository, categories CategorySuggester, resolver *media.Resolver, budget time.Duration, log *logger.Logger) *Suggester {
	return &Suggester{
		businesses: businesses,
		categories: categories,
		resolver:   resolver,
		budget:     budget,
		log:        log,
	}
}

// Suggest runs both lookups in parallel under a fixed time budget. A lookup
// that misses the budget contributes an empty list; the response is always a
// success, possibly partial.
func (s *Suggester) Suggest(ctx context.Context, query string) *Suggestions {
	out := &Suggestions{
		Businesses: []BusinessSuggestion{},
		Categories: []CategorySuggestion{},
	}

	query = strings.TrimSpace(query)
	if len(query) < rank.MinQueryLen {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		businesses, err := s.businesses.Suggest(ctx, query, businessSuggestLimit)
		if err != nil {
			s.logMiss("business", query, err)
			return
		}
		for _, b := range businesses {
			out.Businesses = append(out.Businesses, BusinessSuggestion{
				Name:     b.Name,
				Slug:     b.Slug,
				City:     b.City,
				Category: b.Category,
				LogoURL:  s.resolver.LogoURL(b),
			})
		}
	}()

	go func() {
		defer wg.Done()
		categories, err := s.categories.Suggest(ctx, query, categorySuggestLimit)
		if err != nil {
			s.logMiss("category", query, err)
			return
		}
		for _, c := range categories {
			out.Categories = append(out.Categories, CategorySuggestion{
				Name: c.Name,
				Slug: c.Slug,
				Icon: c.Icon,
			})
		}
	}()

	wg.Wait()
	return out
}

func (s *Suggester) logMiss(kind, query string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("Suggestion lookup missed time budget", "kind", kind, "query", query)
		return
	}
	s.log.Error("Suggestion lookup failed", "kind", kind, "query", query, "error", err)
}
