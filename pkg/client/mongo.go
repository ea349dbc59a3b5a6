package client

import (
	"context"
	"time"

	"bizbranches/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongo connects and pings within the timeout; the service cannot run
// without its store, so failures are fatal.
func NewMongo(log *logger.Logger, uri string, connTimeout time.Duration) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Connected to MongoDB")
	return c
}

// NewMongoOptional is NewMongo for secondary stores (the profile DB):
// a failure is logged and returns nil instead of killing the process.
func NewMongoOptional(log *logger.Logger, uri string, connTimeout time.Duration) *mongo.Client {
	if uri == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Warn("Secondary MongoDB unavailable", "error", err)
		return nil
	}
	if err := c.Ping(ctx, nil); err != nil {
		log.Warn("Secondary MongoDB ping failed", "error", err)
		return nil
	}

	log.Info("Connected to secondary MongoDB")
	return c
}
