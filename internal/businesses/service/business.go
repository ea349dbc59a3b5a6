package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bizerrors "bizbranches/internal/businesses/errors"
	"bizbranches/internal/businesses/repository"
	"bizbranches/internal/businesses/validator"
	"bizbranches/internal/media"
	"bizbranches/internal/search/rank"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"
	"bizbranches/pkg/slug"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const relatedLimit = 2

// CategoryCounter is the slice of the category store this service needs:
// the best-effort denormalized counter bumped on business creation.
type CategoryCounter interface {
	IncrementCount(ctx context.Context, categorySlug string, delta int64) error
}

// ApprovalNotifier receives the fire-and-forget side effect of an approval
// transition.
type ApprovalNotifier interface {
	BusinessApproved(businessID string)
}

type ListParams struct {
	Page     int
	Limit    int
	Category string
	City     string
	Query    string
}

type ListResult struct {
	Businesses []*model.Business
	Total      int64
	Page       int
	Limit      int
}

type DuplicateMatch struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"`
}

type BusinessService interface {
	Create(ctx context.Context, b *model.Business, logo []byte, logoName string) (*model.Business, error)
	GetBySlug(ctx context.Context, slugParam string) (*model.Business, error)
	List(ctx context.Context, p ListParams) (*ListResult, error)
	ListPending(ctx context.Context, page, limit int) (*ListResult, error)
	Related(ctx context.Context, category, city, excludeSlug string) ([]*model.Business, error)
	CheckDuplicates(ctx context.Context, phone, email string) ([]DuplicateMatch, error)
	Moderate(ctx context.Context, id, status string) (modified int64, err error)
	AllSlugs(ctx context.Context) ([]string, error)
}

type businessService struct {
	repo       repository.BusinessRepository
	validator  *validator.BusinessValidator
	categories CategoryCounter
	resolver   *media.Resolver
	uploader   media.Uploader
	notifier   ApprovalNotifier
	log        *logger.Logger
}

func NewBusinessService(
	repo repository.BusinessRepository,
	v *validator.BusinessValidator,
	categories CategoryCounter,
	resolver *media.Resolver,
	uploader media.Uploader,
	notifier ApprovalNotifier,
	log *logger.Logger,
) BusinessService {
	return &businessService{
		repo:       repo,
		validator:  v,
		categories: categories,
		resolver:   resolver,
		uploader:   uploader,
		notifier:   notifier,
		log:        log,
	}
}

func (s *businessService) Create(ctx context.Context, b *model.Business, logo []byte, logoName string) (*model.Business, error) {
	s.validator.Normalize(b)

	if violations := s.validator.Validate(b); violations != nil {
		s.log.Warn("Business submission failed validation",
			"name", b.Name,
			"violations", len(violations),
		)
		return nil, apperrors.Validation("Validation failed", violations)
	}

	if len(logo) > 0 && s.uploader != nil {
		url, publicID, err := s.uploader.Upload(ctx, logo, logoName)
		if err != nil {
			// Logo storage is secondary; the listing is created without it.
			s.log.Warn("Logo upload failed", "name", b.Name, "error", err)
		} else {
			b.LogoURL = url
			b.LogoPublicID = publicID
		}
	}

	b.Status = model.StatusPending
	b.RatingAvg = 0
	b.RatingCount = 0
	b.CreatedAt = time.Now().UTC()

	if err := s.insertWithUniqueSlug(ctx, b); err != nil {
		s.log.Error("Failed to create business", "name", b.Name, "error", err)
		return nil, apperrors.Internal("Failed to create business", err)
	}

	// Best-effort counter, keyed by the category's slug form; never fails
	// the submission.
	if err := s.categories.IncrementCount(ctx, slug.Make(b.Category), 1); err != nil {
		s.log.Warn("Category count increment failed", "category", b.Category, "error", err)
	}

	s.log.Info("Business created", "id", b.ID.Hex(), "slug", b.Slug, "category", b.Category)
	return b, nil
}

// insertWithUniqueSlug probes for a free slug and inserts. The unique index
// on slug is the authoritative guarantee; losing a concurrent race shows up
// as a duplicate-key error and triggers one fresh probe.
func (s *businessService) insertWithUniqueSlug(ctx context.Context, b *model.Business) error {
	base := slug.Make(b.Name)

	var lastErr error
	for tries := 0; tries < 2; tries++ {
		allocated, err := s.allocateSlug(ctx, base)
		if err != nil {
			return err
		}
		b.Slug = allocated

		err = s.repo.Insert(ctx, b)
		if err == nil {
			return nil
		}
		if !bizerrors.IsDuplicateKey(err) {
			return err
		}
		lastErr = err
		s.log.Warn("Slug race lost, reprobing", "slug", allocated)
	}
	return lastErr
}

func (s *businessService) allocateSlug(ctx context.Context, base string) (string, error) {
	for attempt := 0; ; attempt++ {
		candidate := slug.WithSuffix(base, attempt)
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (s *businessService) GetBySlug(ctx context.Context, slugParam string) (*model.Business, error) {
	b, err := s.repo.FindBySlug(ctx, slugParam)
	if err != nil {
		if errors.Is(err, bizerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Business")
		}
		s.log.Error("Failed to fetch business", "slug", slugParam, "error", err)
		return nil, apperrors.Internal("Failed to fetch business", err)
	}
	if b.Status != model.StatusApproved {
		return nil, apperrors.NotFound("Business")
	}

	b.LogoURL = s.resolver.LogoURL(b)
	return b, nil
}

func (s *businessService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	p.Page, p.Limit = normalizePagination(p.Page, p.Limit)

	filter := repository.Filter{
		Status:   model.StatusApproved,
		Category: p.Category,
		City:     p.City,
	}

	if q := strings.TrimSpace(p.Query); len(q) >= rank.MinQueryLen {
		return s.rankedList(ctx, filter, q, p.Page, p.Limit)
	}
	if p.Query != "" {
		// Sub-minimum query: empty result set, not an error.
		return &ListResult{Businesses: []*model.Business{}, Page: p.Page, Limit: p.Limit}, nil
	}

	businesses, total, err := s.repo.List(ctx, filter, p.Page, p.Limit)
	if err != nil {
		s.log.Error("Failed to list businesses", "error", err)
		return nil, apperrors.Internal("Failed to list businesses", err)
	}

	s.resolver.ResolveAll(businesses)
	return &ListResult{Businesses: businesses, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// rankedList fetches substring candidates from the store, scores them with
// the fixed-weight heuristic and paginates in memory.
func (s *businessService) rankedList(ctx context.Context, filter repository.Filter, query string, page, limit int) (*ListResult, error) {
	candidates, err := s.repo.FindMatching(ctx, filter, query)
	if err != nil {
		s.log.Error("Failed to search businesses", "query", query, "error", err)
		return nil, apperrors.Internal("Failed to search businesses", err)
	}

	ranked := rank.Rank(candidates, query)
	total := int64(len(ranked))

	start := (page - 1) * limit
	if start > len(ranked) {
		start = len(ranked)
	}
	end := start + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	pageItems := ranked[start:end]

	s.resolver.ResolveAll(pageItems)
	return &ListResult{Businesses: pageItems, Total: total, Page: page, Limit: limit}, nil
}

func (s *businessService) ListPending(ctx context.Context, page, limit int) (*ListResult, error) {
	page, limit = normalizePagination(page, limit)

	filter := repository.Filter{
		Status:             model.StatusPending,
		ExcludeAdminSource: true,
	}
	businesses, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		s.log.Error("Failed to list pending businesses", "error", err)
		return nil, apperrors.Internal("Failed to list pending businesses", err)
	}

	s.resolver.ResolveAll(businesses)
	return &ListResult{Businesses: businesses, Total: total, Page: page, Limit: limit}, nil
}

func (s *businessService) Related(ctx context.Context, category, city, excludeSlug string) ([]*model.Business, error) {
	if category == "" || city == "" {
		return nil, apperrors.InvalidInput("category and city are required")
	}

	businesses, err := s.repo.Related(ctx, category, city, excludeSlug, relatedLimit)
	if err != nil {
		s.log.Error("Failed to fetch related businesses", "category", category, "city", city, "error", err)
		return nil, apperrors.Internal("Failed to fetch related businesses", err)
	}

	s.resolver.ResolveAll(businesses)
	return businesses, nil
}

func (s *businessService) CheckDuplicates(ctx context.Context, phone, email string) ([]DuplicateMatch, error) {
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	if phone == "" && email == "" {
		return nil, apperrors.InvalidInput("phone or email is required")
	}

	businesses, err := s.repo.FindDuplicates(ctx, phone, email)
	if err != nil {
		s.log.Error("Duplicate check failed", "error", err)
		return nil, apperrors.Internal("Failed to check duplicates", err)
	}

	matches := make([]DuplicateMatch, 0, len(businesses))
	for _, b := range businesses {
		matches = append(matches, DuplicateMatch{
			ID:     b.ID.Hex(),
			Name:   b.Name,
			Slug:   b.Slug,
			Phone:  b.Phone,
			Email:  b.Email,
			Status: b.Status,
		})
	}
	return matches, nil
}

// Moderate applies a status transition. Re-applying the current status is a
// no-op write that still succeeds (modified == 0). Transitioning into
// approved fires the external notification without blocking or failing the
// transition.
func (s *businessService) Moderate(ctx context.Context, id, status string) (int64, error) {
	id = strings.TrimSpace(id)
	status = strings.TrimSpace(status)
	if id == "" || !model.ValidStatus(status) {
		return 0, apperrors.InvalidInput("id and valid status are required")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, apperrors.InvalidInput("id and valid status are required")
	}

	matched, modified, err := s.repo.UpdateStatus(ctx, oid, status)
	if err != nil {
		s.log.Error("Failed to update business status", "id", id, "status", status, "error", err)
		return 0, apperrors.Internal("Failed to update status", err)
	}
	if matched == 0 {
		return 0, apperrors.NotFound("Business")
	}

	if status == model.StatusApproved && modified > 0 {
		s.notifier.BusinessApproved(id)
	}

	s.log.Info("Business moderated", "id", id, "status", status, "modified", modified)
	return modified, nil
}

func (s *businessService) AllSlugs(ctx context.Context) ([]string, error) {
	slugs, err := s.repo.AllSlugs(ctx)
	if err != nil {
		s.log.Error("Failed to fetch business slugs", "error", err)
		return nil, apperrors.Internal("Failed to fetch slugs", err)
	}
	return slugs, nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
