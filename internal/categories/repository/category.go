package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	catErrors "bizbranches/internal/categories/errors"
	"bizbranches/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "categories"

type CategoryRepository interface {
	List(ctx context.Context, query string, limit int64) ([]*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	IncrementCount(ctx context.Context, slug string, delta int64) error
	Suggest(ctx context.Context, query string, limit int64) ([]*model.Category, error)
}

type mongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) CategoryRepository {
	return &mongoCategoryRepository{collection: db.Collection(CollectionName)}
}

func containsFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// activeFilter excludes only documents explicitly flagged inactive; legacy
// documents without the flag still count as active.
func activeFilter() bson.M {
	return bson.M{"isActive": bson.M{"$ne": false}}
}

// List returns active categories, busiest first, name as tiebreak. A query
// narrows by substring on name or slug.
func (r *mongoCategoryRepository) List(ctx context.Context, query string, limit int64) ([]*model.Category, error) {
	filter := activeFilter()
	if query != "" {
		q := containsFold(query)
		filter["$or"] = []bson.M{{"name": q}, {"slug": q}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *mongoCategoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	filter := activeFilter()
	filter["slug"] = slug

	var category model.Category
	err := r.collection.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catErrors.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}
	return &category, nil
}

// IncrementCount bumps the denormalized business counter. A miss is not an
// error: submissions may name categories that have no curated document yet.
func (r *mongoCategoryRepository) IncrementCount(ctx context.Context, slug string, delta int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"slug": slug},
		bson.M{"$inc": bson.M{"count": delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment category count: %w", err)
	}
	return nil
}

func (r *mongoCategoryRepository) Suggest(ctx context.Context, query string, limit int64) ([]*model.Category, error) {
	filter := activeFilter()
	q := containsFold(query)
	filter["$or"] = []bson.M{{"name": q}, {"slug": q}}

	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "slug": 1, "icon": 1, "count": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode category suggestions: %w", err)
	}
	return categories, nil
}
