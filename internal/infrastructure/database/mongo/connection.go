// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps the MongoDB client and the selected database
type Client struct {
	client *mongo.Client
	DB     *mongo.Database
}

// NewConnection connects to MongoDB and verifies the connection
func NewConnection(cfg *config.Config, log *logrus.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.Database.MongoURI)
	if cfg.Database.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("database", cfg.Database.MongoDatabase).Info("MongoDB connection established")
	return &Client{client: client, DB: client.Database(cfg.Database.MongoDatabase)}, nil
}

// Health checks the connection
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}
