package repository

import (
	"context"
	"fmt"

	"bizbranches/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "reviews"

// listCap bounds a single review listing; reviews past it are still part of
// the aggregate.
const listCap = 200

// Aggregate is the recomputed (average, count) pair for one business,
// derived from the source-of-truth review records.
type Aggregate struct {
	Avg   float64
	Count int64
}

type ReviewRepository interface {
	Insert(ctx context.Context, review *model.Review) error
	ListByBusiness(ctx context.Context, businessID string) ([]*model.Review, error)
	AggregateByBusiness(ctx context.Context, businessID string) (Aggregate, error)
}

type mongoReviewRepository struct {
	collection *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{collection: db.Collection(CollectionName)}
}

func (r *mongoReviewRepository) Insert(ctx context.Context, review *model.Review) error {
	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *mongoReviewRepository) ListByBusiness(ctx context.Context, businessID string) ([]*model.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(listCap).
		SetProjection(bson.M{"_id": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"businessId": businessID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *mongoReviewRepository) AggregateByBusiness(ctx context.Context, businessID string) (Aggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"businessId": businessID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$businessId",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return Aggregate{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return Aggregate{}, fmt.Errorf("failed to decode review aggregate: %w", err)
	}
	if len(results) == 0 {
		return Aggregate{}, nil
	}
	return Aggregate{Avg: results[0].Avg, Count: results[0].Count}, nil
}
