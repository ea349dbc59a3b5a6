package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	bizerrors "bizbranches/internal/businesses/errors"
	"bizbranches/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "businesses"

// candidateCap bounds how many documents a ranked-search scan may pull into
// memory per query.
const candidateCap = 500

// Filter narrows listings. Category and City match case-insensitively
// against the loosely-typed reference fields on the document.
type Filter struct {
	Status             string
	Category           string
	City               string
	ExcludeAdminSource bool
}

type BusinessRepository interface {
	Insert(ctx context.Context, b *model.Business) error
	FindBySlug(ctx context.Context, slug string) (*model.Business, error)
	FindByIDOrSlug(ctx context.Context, ref string) (*model.Business, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f Filter, page, limit int) ([]*model.Business, int64, error)
	FindMatching(ctx context.Context, f Filter, query string) ([]*model.Business, error)
	Related(ctx context.Context, category, city, excludeSlug string, limit int64) ([]*model.Business, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (matched, modified int64, err error)
	FindDuplicates(ctx context.Context, phone, email string) ([]*model.Business, error)
	Suggest(ctx context.Context, query string, limit int64) ([]*model.Business, error)
	UpdateRating(ctx context.Context, id primitive.ObjectID, avg float64, count int64) error
	AllSlugs(ctx context.Context) ([]string, error)
}

type mongoBusinessRepository struct {
	collection *mongo.Collection
}

func NewMongoBusinessRepository(db *mongo.Database) BusinessRepository {
	return &mongoBusinessRepository{collection: db.Collection(CollectionName)}
}

// exactFold is a case-insensitive whole-field match with the user value
// escaped, so "Technology" and "technology" hit the same documents and
// regex metacharacters in input cannot change the query.
func exactFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func containsFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = exactFold(f.Category)
	}
	if f.City != "" {
		filter["city"] = exactFold(f.City)
	}
	if f.ExcludeAdminSource {
		filter["source"] = bson.M{"$ne": model.SourceAdmin}
	}
	return filter
}

func (r *mongoBusinessRepository) Insert(ctx context.Context, b *model.Business) error {
	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to insert business: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (r *mongoBusinessRepository) FindBySlug(ctx context.Context, slug string) (*model.Business, error) {
	var b model.Business
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bizerrors.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to find business by slug: %w", err)
	}
	return &b, nil
}

// FindByIDOrSlug resolves the loose review reference: a valid hex ObjectID
// is tried as _id first, anything else (or an id miss) falls back to slug.
func (r *mongoBusinessRepository) FindByIDOrSlug(ctx context.Context, ref string) (*model.Business, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		var b model.Business
		err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&b)
		if err == nil {
			return &b, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to find business by id: %w", err)
		}
	}
	return r.FindBySlug(ctx, ref)
}

func (r *mongoBusinessRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to probe slug: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBusinessRepository) List(ctx context.Context, f Filter, page, limit int) ([]*model.Business, int64, error) {
	filter := f.toBSON()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, total, nil
}

// FindMatching returns every document under f whose name, category,
// subcategory or description contains query, newest first, capped. Scoring
// and ordering happen in the service; the store only narrows candidates.
func (r *mongoBusinessRepository) FindMatching(ctx context.Context, f Filter, query string) ([]*model.Business, error) {
	filter := f.toBSON()
	q := containsFold(query)
	filter["$or"] = []bson.M{
		{"name": q},
		{"category": q},
		{"subCategory": q},
		{"description": q},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(candidateCap)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode search candidates: %w", err)
	}
	return businesses, nil
}

func (r *mongoBusinessRepository) Related(ctx context.Context, category, city, excludeSlug string, limit int64) ([]*model.Business, error) {
	filter := bson.M{
		"category": exactFold(category),
		"city":     exactFold(city),
		"status":   model.StatusApproved,
	}
	if excludeSlug != "" {
		filter["slug"] = bson.M{"$ne": excludeSlug}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find related businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode related businesses: %w", err)
	}
	return businesses, nil
}

func (r *mongoBusinessRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, int64, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update business status: %w", err)
	}
	return result.MatchedCount, result.ModifiedCount, nil
}

func (r *mongoBusinessRepository) FindDuplicates(ctx context.Context, phone, email string) ([]*model.Business, error) {
	var or []bson.M
	if phone != "" {
		or = append(or, bson.M{"phone": exactFold(phone)})
	}
	if email != "" {
		or = append(or, bson.M{"email": exactFold(email)})
	}
	if len(or) == 0 {
		return nil, nil
	}

	opts := options.Find().
		SetLimit(10).
		SetProjection(bson.M{"name": 1, "slug": 1, "phone": 1, "email": 1, "status": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"$or": or}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode duplicate matches: %w", err)
	}
	return businesses, nil
}

// Suggest is the unscored typeahead query: OR-substring over name and
// description, approved only, projected to listing fields. MaxTime keeps
// the store from holding the request past the suggestion time budget.
func (r *mongoBusinessRepository) Suggest(ctx context.Context, query string, limit int64) ([]*model.Business, error) {
	q := containsFold(query)
	filter := bson.M{
		"status": model.StatusApproved,
		"$or":    []bson.M{{"name": q}, {"description": q}},
	}

	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "city": 1, "category": 1, "logoUrl": 1, "slug": 1})
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetMaxTime(time.Until(deadline))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return businesses, nil
}

func (r *mongoBusinessRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, avg float64, count int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"ratingAvg": avg, "ratingCount": count, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update rating cache: %w", err)
	}
	return nil
}

func (r *mongoBusinessRepository) AllSlugs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"slug": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"slug": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slugs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode slugs: %w", err)
	}

	slugs := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Slug != "" {
			slugs = append(slugs, d.Slug)
		}
	}
	return slugs, nil
}
