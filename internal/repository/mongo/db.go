package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// ConnectDB connects to MongoDB and verifies the primary answers a ping.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
	defer pingCancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection this package owns.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureUserIndexes(ctx, db); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := EnsureWorkoutLogIndexes(ctx, db); err != nil {
		return fmt.Errorf("workout_logs indexes: %w", err)
	}
	return nil
}
