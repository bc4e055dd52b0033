// Package database provides MongoDB connection management.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds MongoDB connection settings read from environment variables.
type Config struct {
	URI    string
	DBName string
}

// ConfigFromEnv reads database config from well-known environment variables,
// falling back to sensible local-development defaults.
func ConfigFromEnv() Config {
	return Config{
		URI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName: getEnv("MONGODB_DBNAME", "eventfinder"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// retryInterval is how long Connect waits between connection attempts.
const retryInterval = 5 * time.Second

// Connect dials MongoDB and verifies the connection with a ping.
// On failure it retries every 5 seconds until it succeeds or ctx is
// cancelled, to accommodate the database container starting up.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)

	for {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		slog.Warn("mongodb connect failed, retrying",
			"error", err,
			"retry_in", retryInterval,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mongodb: %w", ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Collection returns a handle to a named collection in the configured database.
func Collection(client *mongo.Client, cfg Config, name string) *mongo.Collection {
	return client.Database(cfg.DBName).Collection(name)
}
