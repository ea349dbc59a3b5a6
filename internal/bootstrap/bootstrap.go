package bootstrap

import (
	"context"
	"fmt"
	"time"

	"bizbranches/pkg/logger"
	"bizbranches/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run creates indexes and seeds reference data. Failures are logged and
// reported but the caller treats them as non-fatal: the API can serve with
// degraded indexes.
func Run(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	if err := ensureIndexes(ctx, db); err != nil {
		log.Warn("Index creation incomplete", "error", err)
		return err
	}
	if err := seed(ctx, db, log); err != nil {
		log.Warn("Reference data seeding incomplete", "error", err)
		return err
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	businessIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{
			// Partial so legacy documents without a slug don't collide on null.
			Keys: bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"slug": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "description", Value: 1}}},
	}
	if _, err := db.Collection("businesses").Indexes().CreateMany(ctx, businessIndexes); err != nil {
		return fmt.Errorf("failed to create business indexes: %w", err)
	}

	uniqueSlug := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("categories").Indexes().CreateMany(ctx, uniqueSlug); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}
	if _, err := db.Collection("cities").Indexes().CreateMany(ctx, uniqueSlug); err != nil {
		return fmt.Errorf("failed to create city indexes: %w", err)
	}

	reviewIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "rating", Value: 1}}},
	}
	if _, err := db.Collection("reviews").Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

func seed(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	now := time.Now().UTC()

	categoryCount, err := db.Collection("categories").CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if categoryCount == 0 {
		docs := make([]interface{}, 0, len(defaultCategories))
		for _, c := range defaultCategories {
			c.IsActive = true
			c.CreatedAt = now
			docs = append(docs, c)
		}
		if _, err := db.Collection("categories").InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		log.Info("Seeded default categories", "count", len(docs))
	}

	cityCount, err := db.Collection("cities").CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count cities: %w", err)
	}
	if cityCount == 0 {
		docs := make([]interface{}, 0, len(defaultCities))
		for _, c := range defaultCities {
			c.Country = "Pakistan"
			c.IsActive = true
			c.CreatedAt = now
			docs = append(docs, c)
		}
		if _, err := db.Collection("cities").InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to seed cities: %w", err)
		}
		log.Info("Seeded default cities", "count", len(docs))
	}
	return nil
}

var defaultCategories = []model.Category{
	{Name: "Beauty Salon", Slug: "beauty-salon", Icon: "scissors"},
	{Name: "Automotive", Slug: "automotive", Icon: "car"},
	{Name: "Restaurants", Slug: "restaurants", Icon: "utensils"},
	{Name: "Healthcare", Slug: "healthcare", Icon: "stethoscope"},
	{Name: "Education", Slug: "education", Icon: "graduation-cap"},
	{Name: "Shopping", Slug: "shopping", Icon: "shopping-bag"},
}

var defaultCities = []model.City{
	{Name: "Lahore", Slug: "lahore", Province: "Punjab"},
	{Name: "Karachi", Slug: "karachi", Province: "Sindh"},
	{Name: "Islamabad", Slug: "islamabad", Province: "Punjab"},
	{Name: "Rawalpindi", Slug: "rawalpindi", Province: "Punjab"},
	{Name: "Faisalabad", Slug: "faisalabad", Province: "Punjab"},
	{Name: "Peshawar", Slug: "peshawar", Province: "Khyber Pakhtunkhwa"},
}
