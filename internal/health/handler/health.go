package handler

import (
	"context"
	"net/http"
	"time"

	apperrors "bizbranches/pkg/errors"
	"bizbranches/pkg/httpx"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const sampleSize = 3

// debugCollections are the collections the inspection endpoint reports on.
var debugCollections = []string{"categories", "cities", "businesses"}

type HealthHandler struct {
	db  *mongo.Database
	log *logger.Logger
}

func NewHealthHandler(db *mongo.Database, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
	router.GET("/api/db-health", h.DBHealth)
	router.GET("/api/debug", h.Debug)
}

func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeOK(w, httpx.Fields{
		"message":   "BizBranches API",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DBHealth pings the store; server build info is reported when available
// but its absence does not fail the check.
func (h *HealthHandler) DBHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		h.log.Error("Database ping failed", "error", err)
		h.writeError(w, apperrors.Unavailable("Database unreachable"))
		return
	}

	payload := httpx.Fields{
		"database": h.db.Name(),
		"pingMs":   time.Since(start).Milliseconds(),
	}
	var build struct {
		Version string `bson:"version"`
	}
	if err := h.db.RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&build); err == nil {
		payload["serverVersion"] = build.Version
	}

	httpx.NoStore(w)
	h.writeOK(w, payload)
}

// Debug reports document counts and a small sample per collection, for
// eyeballing a freshly seeded deployment.
func (h *HealthHandler) Debug(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	collections := httpx.Fields{}
	for _, name := range debugCollections {
		collection := h.db.Collection(name)

		count, err := collection.CountDocuments(ctx, bson.M{})
		if err != nil {
			h.log.Error("Debug count failed", "collection", name, "error", err)
			h.writeError(w, apperrors.Internal("Failed to inspect collections", err))
			return
		}

		samples, err := h.sample(ctx, collection)
		if err != nil {
			h.log.Error("Debug sample failed", "collection", name, "error", err)
			h.writeError(w, apperrors.Internal("Failed to inspect collections", err))
			return
		}

		collections[name] = httpx.Fields{
			"count":   count,
			"samples": samples,
		}
	}

	httpx.NoStore(w)
	h.writeOK(w, httpx.Fields{"collections": collections})
}

func (h *HealthHandler) sample(ctx context.Context, collection *mongo.Collection) ([]bson.M, error) {
	cursor, err := collection.Find(ctx, bson.M{}, options.Find().SetLimit(sampleSize))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	samples := []bson.M{}
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (h *HealthHandler) writeOK(w http.ResponseWriter, payload httpx.Fields) {
	if err := httpx.WriteOK(w, http.StatusOK, payload); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}

func (h *HealthHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("Failed to write error response", "error", writeErr)
	}
}
