package service

import (
	"context"
	"testing"
	"time"

	bizerrors "bizbranches/internal/businesses/errors"
	"bizbranches/internal/businesses/repository"
	"bizbranches/internal/businesses/validator"
	"bizbranches/internal/media"
	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

// stubRepo implements BusinessRepository with overridable behavior per test.
type stubRepo struct {
	repository.BusinessRepository

	insert    func(ctx context.Context, b *model.Business) error
	slugs     map[string]bool
	findSlug  func(ctx context.Context, slug string) (*model.Business, error)
	list      func(ctx context.Context, f repository.Filter, page, limit int) ([]*model.Business, int64, error)
	matching  func(ctx context.Context, f repository.Filter, query string) ([]*model.Business, error)
	setStatus func(ctx context.Context, id primitive.ObjectID, status string) (int64, int64, error)
}

func (s *stubRepo) Insert(ctx context.Context, b *model.Business) error {
	if s.insert != nil {
		return s.insert(ctx, b)
	}
	return nil
}

func (s *stubRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return s.slugs[slug], nil
}

func (s *stubRepo) FindBySlug(ctx context.Context, slug string) (*model.Business, error) {
	return s.findSlug(ctx, slug)
}

func (s *stubRepo) List(ctx context.Context, f repository.Filter, page, limit int) ([]*model.Business, int64, error) {
	return s.list(ctx, f, page, limit)
}

func (s *stubRepo) FindMatching(ctx context.Context, f repository.Filter, query string) ([]*model.Business, error) {
	return s.matching(ctx, f, query)
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, int64, error) {
	return s.setStatus(ctx, id, status)
}

type stubCounter struct {
	calls []string
}

func (c *stubCounter) IncrementCount(_ context.Context, slug string, _ int64) error {
	c.calls = append(c.calls, slug)
	return nil
}

type stubNotifier struct {
	approved []string
}

func (n *stubNotifier) BusinessApproved(id string) {
	n.approved = append(n.approved, id)
}

func newTestService(repo *stubRepo, counter *stubCounter, notifier *stubNotifier) BusinessService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	return NewBusinessService(
		repo,
		validator.NewBusinessValidator(),
		counter,
		media.NewResolver(""),
		nil,
		notifier,
		log,
	)
}

func validSubmission() *model.Business {
	return &model.Business{
		Name:        "Al-Noor Traders",
		Category:    "Shopping",
		Province:    "Punjab",
		City:        "Lahore",
		Address:     "12 Mall Road",
		Phone:       "042-1234567",
		Email:       "info@alnoor.pk",
		Description: "Wholesale traders of household goods.",
	}
}

func TestCreateAssignsSlugAndPendingStatus(t *testing.T) {
	repo := &stubRepo{slugs: map[string]bool{}}
	counter := &stubCounter{}
	svc := newTestService(repo, counter, &stubNotifier{})

	created, err := svc.Create(context.Background(), validSubmission(), nil, "")

	require.NoError(t, err)
	assert.Equal(t, "al-noor-traders", created.Slug)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Zero(t, created.RatingAvg)
	assert.Zero(t, created.RatingCount)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, []string{"shopping"}, counter.calls)
}

func TestCreateProbesTakenSlugs(t *testing.T) {
	repo := &stubRepo{slugs: map[string]bool{
		"al-noor-traders":   true,
		"al-noor-traders-1": true,
	}}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	created, err := svc.Create(context.Background(), validSubmission(), nil, "")

	require.NoError(t, err)
	assert.Equal(t, "al-noor-traders-2", created.Slug)
}

func TestCreateReprobesOnSlugRace(t *testing.T) {
	repo := &stubRepo{slugs: map[string]bool{}}
	inserts := 0
	repo.insert = func(_ context.Context, b *model.Business) error {
		inserts++
		if inserts == 1 {
			// Concurrent submission won the first probe.
			repo.slugs[b.Slug] = true
			return duplicateKeyErr()
		}
		return nil
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	created, err := svc.Create(context.Background(), validSubmission(), nil, "")

	require.NoError(t, err)
	assert.Equal(t, 2, inserts)
	assert.Equal(t, "al-noor-traders-1", created.Slug)
}

func TestCreateRejectsInvalidSubmission(t *testing.T) {
	svc := newTestService(&stubRepo{slugs: map[string]bool{}}, &stubCounter{}, &stubNotifier{})

	b := validSubmission()
	b.Name = ""
	b.Email = "not-an-email"

	_, err := svc.Create(context.Background(), b, nil, "")

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	violations, ok := appErr.Details.([]validator.Violation)
	require.True(t, ok)
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestGetBySlugHidesUnapproved(t *testing.T) {
	repo := &stubRepo{
		findSlug: func(_ context.Context, slug string) (*model.Business, error) {
			return &model.Business{Slug: slug, Status: model.StatusPending}, nil
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	_, err := svc.GetBySlug(context.Background(), "some-shop")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestGetBySlugNotFound(t *testing.T) {
	repo := &stubRepo{
		findSlug: func(context.Context, string) (*model.Business, error) {
			return nil, bizerrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	_, err := svc.GetBySlug(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestListShortQueryReturnsEmpty(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubCounter{}, &stubNotifier{})

	result, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 20, Query: "a"})

	require.NoError(t, err)
	assert.Empty(t, result.Businesses)
	assert.Zero(t, result.Total)
}

func TestListRankedPaginatesInMemory(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candidates := make([]*model.Business, 0, 5)
	for i := 0; i < 5; i++ {
		candidates = append(candidates, &model.Business{
			Name:      "Salon " + string(rune('A'+i)),
			Category:  "salon",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	repo := &stubRepo{
		matching: func(_ context.Context, f repository.Filter, query string) ([]*model.Business, error) {
			assert.Equal(t, model.StatusApproved, f.Status)
			assert.Equal(t, "salon", query)
			return candidates, nil
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	result, err := svc.List(context.Background(), ListParams{Page: 2, Limit: 2, Query: "salon"})

	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	require.Len(t, result.Businesses, 2)
	// All scores tie, so recency decides: page 2 holds the 3rd and 4th newest.
	assert.Equal(t, "Salon C", result.Businesses[0].Name)
	assert.Equal(t, "Salon B", result.Businesses[1].Name)
}

func TestListRankedPageBeyondEnd(t *testing.T) {
	repo := &stubRepo{
		matching: func(context.Context, repository.Filter, string) ([]*model.Business, error) {
			return []*model.Business{{Name: "Only Salon", Category: "salon"}}, nil
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	result, err := svc.List(context.Background(), ListParams{Page: 9, Limit: 20, Query: "salon"})

	require.NoError(t, err)
	assert.Empty(t, result.Businesses)
	assert.Equal(t, int64(1), result.Total)
}

func TestListPendingExcludesAdminDrafts(t *testing.T) {
	var captured repository.Filter
	repo := &stubRepo{
		list: func(_ context.Context, f repository.Filter, _, _ int) ([]*model.Business, int64, error) {
			captured = f
			return nil, 0, nil
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	_, err := svc.ListPending(context.Background(), 1, 20)

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, captured.Status)
	assert.True(t, captured.ExcludeAdminSource)
}

func TestModerateApprovalNotifies(t *testing.T) {
	id := primitive.NewObjectID()
	repo := &stubRepo{
		setStatus: func(_ context.Context, gotID primitive.ObjectID, status string) (int64, int64, error) {
			assert.Equal(t, id, gotID)
			assert.Equal(t, model.StatusApproved, status)
			return 1, 1, nil
		},
	}
	notifier := &stubNotifier{}
	svc := newTestService(repo, &stubCounter{}, notifier)

	modified, err := svc.Moderate(context.Background(), id.Hex(), model.StatusApproved)

	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)
	assert.Equal(t, []string{id.Hex()}, notifier.approved)
}

func TestModerateIdempotentReapply(t *testing.T) {
	repo := &stubRepo{
		setStatus: func(context.Context, primitive.ObjectID, string) (int64, int64, error) {
			return 1, 0, nil // matched but unchanged
		},
	}
	notifier := &stubNotifier{}
	svc := newTestService(repo, &stubCounter{}, notifier)

	modified, err := svc.Moderate(context.Background(), primitive.NewObjectID().Hex(), model.StatusApproved)

	require.NoError(t, err)
	assert.Zero(t, modified)
	assert.Empty(t, notifier.approved, "re-approval must not re-notify")
}

func TestModerateUnknownID(t *testing.T) {
	repo := &stubRepo{
		setStatus: func(context.Context, primitive.ObjectID, string) (int64, int64, error) {
			return 0, 0, nil
		},
	}
	svc := newTestService(repo, &stubCounter{}, &stubNotifier{})

	_, err := svc.Moderate(context.Background(), primitive.NewObjectID().Hex(), model.StatusRejected)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestModerateRejectsBadInput(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubCounter{}, &stubNotifier{})

	tests := []struct {
		name   string
		id     string
		status string
	}{
		{"unknown status", primitive.NewObjectID().Hex(), "archived"},
		{"empty id", "", model.StatusApproved},
		{"malformed id", "not-hex", model.StatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Moderate(context.Background(), tt.id, tt.status)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
		})
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 50, 2, 50},
		{1, 500, 1, 100},
	}
	for _, tt := range tests {
		page, limit := normalizePagination(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}
