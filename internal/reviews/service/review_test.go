package service

import (
	"context"
	"sync"
	"testing"

	bizrepo "bizbranches/internal/businesses/repository"
	"bizbranches/internal/reviews/repository"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubReviewRepo struct {
	mu       sync.Mutex
	inserted []*model.Review
	reviews  []*model.Review
	agg      repository.Aggregate
}

func (s *stubReviewRepo) Insert(_ context.Context, review *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, review)
	return nil
}

func (s *stubReviewRepo) ListByBusiness(context.Context, string) ([]*model.Review, error) {
	return s.reviews, nil
}

func (s *stubReviewRepo) AggregateByBusiness(context.Context, string) (repository.Aggregate, error) {
	return s.agg, nil
}

type stubBusinessStore struct {
	bizrepo.BusinessRepository

	business *model.Business
	findErr  error

	mu      sync.Mutex
	avg     float64
	count   int64
	updates int
}

func (s *stubBusinessStore) FindByIDOrSlug(context.Context, string) (*model.Business, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.business, nil
}

func (s *stubBusinessStore) UpdateRating(_ context.Context, _ primitive.ObjectID, avg float64, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avg = avg
	s.count = count
	s.updates++
	return nil
}

func (s *stubBusinessStore) lastRating() (float64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avg, s.count
}

func newTestReviewService(reviews *stubReviewRepo, businesses *stubBusinessStore) ReviewService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	return NewReviewService(reviews, businesses, log)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{4.254, 4.25},
		{4.255, 4.26}, // half rounds up
		{4.2449999, 4.24},
		{0, 0},
		{5, 5},
		{4.333333333, 4.33},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestSubmitUpdatesIncrementalAverage(t *testing.T) {
	store := &stubBusinessStore{business: &model.Business{
		ID:          primitive.NewObjectID(),
		RatingAvg:   4.0,
		RatingCount: 3,
	}}
	reviews := &stubReviewRepo{}
	svc := newTestReviewService(reviews, store)

	result, err := svc.Submit(context.Background(), "some-shop", "Ali", 5, "Great service, highly recommended")

	require.NoError(t, err)
	// (4.0*3 + 5) / 4 = 4.25
	assert.Equal(t, 4.25, result.RatingAvg)
	assert.Equal(t, int64(4), result.RatingCount)

	avg, count := store.lastRating()
	assert.Equal(t, 4.25, avg)
	assert.Equal(t, int64(4), count)

	require.Len(t, reviews.inserted, 1)
	stored := reviews.inserted[0]
	assert.Equal(t, store.business.ID.Hex(), stored.BusinessID)
	assert.Equal(t, 5, stored.Rating)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestSubmitFirstReview(t *testing.T) {
	store := &stubBusinessStore{business: &model.Business{ID: primitive.NewObjectID()}}
	svc := newTestReviewService(&stubReviewRepo{}, store)

	result, err := svc.Submit(context.Background(), "some-shop", "Sara", 3, "Average experience overall")

	require.NoError(t, err)
	assert.Equal(t, 3.0, result.RatingAvg)
	assert.Equal(t, int64(1), result.RatingCount)
}

func TestSubmitValidation(t *testing.T) {
	store := &stubBusinessStore{business: &model.Business{ID: primitive.NewObjectID()}}

	tests := []struct {
		name    string
		person  string
		rating  int
		comment string
	}{
		{"rating too high", "Ali", 6, "valid comment here"},
		{"rating zero", "Ali", 0, "valid comment here"},
		{"rating negative", "Ali", -2, "valid comment here"},
		{"missing name", "", 4, "valid comment here"},
		{"comment too short", "Ali", 4, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := &stubReviewRepo{}
			svc := newTestReviewService(reviews, store)

			_, err := svc.Submit(context.Background(), "some-shop", tt.person, tt.rating, tt.comment)

			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
			assert.Empty(t, reviews.inserted, "invalid review must not be stored")
		})
	}
}

func TestSubmitRequiresBusinessRef(t *testing.T) {
	svc := newTestReviewService(&stubReviewRepo{}, &stubBusinessStore{})

	_, err := svc.Submit(context.Background(), "  ", "Ali", 4, "valid comment here")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestListForBusinessRecomputesAggregate(t *testing.T) {
	store := &stubBusinessStore{business: &model.Business{
		ID:          primitive.NewObjectID(),
		RatingAvg:   2.0, // stale cache
		RatingCount: 1,
	}}
	reviews := &stubReviewRepo{
		reviews: []*model.Review{
			{Rating: 5}, {Rating: 4}, {Rating: 4},
		},
		agg: repository.Aggregate{Avg: 13.0 / 3.0, Count: 3},
	}
	svc := newTestReviewService(reviews, store)

	result, err := svc.ListForBusiness(context.Background(), "some-shop")

	require.NoError(t, err)
	assert.Equal(t, 4.33, result.RatingAvg)
	assert.Equal(t, int64(3), result.RatingCount)
	assert.Len(t, result.Reviews, 3)
}

func TestListForBusinessEmpty(t *testing.T) {
	store := &stubBusinessStore{business: &model.Business{ID: primitive.NewObjectID()}}
	svc := newTestReviewService(&stubReviewRepo{}, store)

	result, err := svc.ListForBusiness(context.Background(), "some-shop")

	require.NoError(t, err)
	assert.NotNil(t, result.Reviews)
	assert.Empty(t, result.Reviews)
	assert.Zero(t, result.RatingAvg)
	assert.Zero(t, result.RatingCount)
}
