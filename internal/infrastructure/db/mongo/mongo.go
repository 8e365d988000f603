// Package mongo holds the marketplace persistence layer: the connection
// helper plus one repository per aggregate (users, assignments, orders,
// payments, notifications, messages, reports).
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultDatabase = "writing_marketplace"
	defaultTimeout  = 10 * time.Second
)

// Config is the subset of MongoDB settings the marketplace needs. Database
// falls back to the marketplace default when empty.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect dials MongoDB, pings it to fail fast on a bad URI, and hands back
// the client together with the marketplace database handle. The repositories
// in this package all derive their collections from that handle.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := cfg.Database
	if name == "" {
		name = defaultDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(name), nil
}
