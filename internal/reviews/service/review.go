package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	bizerrors "bizbranches/internal/businesses/errors"
	bizrepo "bizbranches/internal/businesses/repository"
	"bizbranches/internal/reviews/repository"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Round2 rounds to two decimals with round-half-up semantics; the rating
// average is always stored and reported this way.
func Round2(f float64) float64 {
	return math.Floor(f*100+0.5) / 100
}

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type SubmitResult struct {
	RatingAvg   float64
	RatingCount int64
}

type ListResult struct {
	Reviews     []*model.Review
	RatingAvg   float64
	RatingCount int64
}

type ReviewService interface {
	Submit(ctx context.Context, businessRef, name string, rating int, comment string) (*SubmitResult, error)
	ListForBusiness(ctx context.Context, businessRef string) (*ListResult, error)
}

type reviewService struct {
	repo       repository.ReviewRepository
	businesses bizrepo.BusinessRepository
	validate   *validator.Validate
	log        *logger.Logger
}

func NewReviewService(repo repository.ReviewRepository, businesses bizrepo.BusinessRepository, log *logger.Logger) ReviewService {
	return &reviewService{
		repo:       repo,
		businesses: businesses,
		validate:   validator.New(),
		log:        log,
	}
}

// Submit stores the review (source of truth) and then applies the
// incremental aggregate update as a best-effort secondary write.
func (s *reviewService) Submit(ctx context.Context, businessRef, name string, rating int, comment string) (*SubmitResult, error) {
	businessRef = strings.TrimSpace(businessRef)
	if businessRef == "" {
		return nil, apperrors.InvalidInput("businessId is required")
	}

	business, err := s.resolveBusiness(ctx, businessRef)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		BusinessID: business.ID.Hex(),
		Name:       strings.TrimSpace(name),
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  time.Now().UTC(),
	}

	if violations := s.validateReview(review); violations != nil {
		return nil, apperrors.Validation("Invalid review", violations)
	}

	if err := s.repo.Insert(ctx, review); err != nil {
		s.log.Error("Failed to store review", "business_id", review.BusinessID, "error", err)
		return nil, apperrors.Internal("Failed to submit review", err)
	}

	newAvg := Round2((business.RatingAvg*float64(business.RatingCount) + float64(rating)) / float64(business.RatingCount+1))
	newCount := business.RatingCount + 1

	// The rating pair is a recomputable cache; a failed sync is logged and
	// swallowed, never failing the submission.
	if err := s.businesses.UpdateRating(ctx, business.ID, newAvg, newCount); err != nil {
		s.log.Warn("Rating cache update failed", "business_id", review.BusinessID, "error", err)
	}

	s.log.Info("Review submitted",
		"business_id", review.BusinessID,
		"rating", rating,
		"rating_avg", newAvg,
		"rating_count", newCount,
	)
	return &SubmitResult{RatingAvg: newAvg, RatingCount: newCount}, nil
}

// ListForBusiness returns reviews newest first and recomputes the aggregate
// from the review records, syncing the business document in the background
// so drift self-heals.
func (s *reviewService) ListForBusiness(ctx context.Context, businessRef string) (*ListResult, error) {
	businessRef = strings.TrimSpace(businessRef)
	if businessRef == "" {
		return nil, apperrors.InvalidInput("businessId is required")
	}

	business, err := s.resolveBusiness(ctx, businessRef)
	if err != nil {
		return nil, err
	}
	businessID := business.ID.Hex()

	reviews, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.log.Error("Failed to list reviews", "business_id", businessID, "error", err)
		return nil, apperrors.Internal("Failed to fetch reviews", err)
	}
	if reviews == nil {
		reviews = []*model.Review{}
	}

	agg, err := s.repo.AggregateByBusiness(ctx, businessID)
	if err != nil {
		s.log.Error("Failed to recompute rating aggregate", "business_id", businessID, "error", err)
		return nil, apperrors.Internal("Failed to fetch reviews", err)
	}
	avg := Round2(agg.Avg)

	s.syncAggregate(business.ID, businessID, avg, agg.Count)

	return &ListResult{Reviews: reviews, RatingAvg: avg, RatingCount: agg.Count}, nil
}

func (s *reviewService) syncAggregate(id primitive.ObjectID, businessID string, avg float64, count int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.businesses.UpdateRating(ctx, id, avg, count); err != nil {
			s.log.Warn("Rating cache sync failed", "business_id", businessID, "error", err)
		}
	}()
}

func (s *reviewService) resolveBusiness(ctx context.Context, ref string) (*model.Business, error) {
	business, err := s.businesses.FindByIDOrSlug(ctx, ref)
	if err != nil {
		if errors.Is(err, bizerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Business")
		}
		s.log.Error("Failed to resolve business for review", "ref", ref, "error", err)
		return nil, apperrors.Internal("Failed to resolve business", err)
	}
	return business, nil
}

func (s *reviewService) validateReview(review *model.Review) []Violation {
	err := s.validate.Struct(review)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "", Message: err.Error(), Code: "invalid"}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		msg := field + " is invalid"
		switch fe.Tag() {
		case "required":
			msg = field + " is required"
		case "min", "max":
			if field == "rating" {
				msg = "rating must be between 1 and 5"
			} else {
				msg = field + " length is out of range"
			}
		}
		violations = append(violations, Violation{Field: field, Message: msg, Code: fe.Tag()})
	}
	return violations
}
