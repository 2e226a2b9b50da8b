package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultDatabaseName = "tourguard"

// Connection owns the MongoDB client for the lifetime of the process.
type Connection struct {
	client   *mongo.Client
	database *mongo.Database
	logger   logrus.FieldLogger
}

// Connect establishes connection to MongoDB and applies pending migrations
func Connect(ctx context.Context, databaseURL string, logger logrus.FieldLogger) (*Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(databaseURL)

	// Configure connection pool
	clientOptions.SetMaxPoolSize(100)
	clientOptions.SetMinPoolSize(5)
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)
	clientOptions.SetReadPreference(readpref.Primary())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDatabaseName(databaseURL)
	conn := &Connection{
		client:   client,
		database: client.Database(dbName),
		logger:   logger,
	}

	logger.WithField("database", dbName).Info("Connected to MongoDB")

	if err := RunMigrations(context.Background(), conn.database, logger); err != nil {
		logger.WithError(err).Warn("Migration warning")
	}

	return conn, nil
}

// Database returns the database handle
func (c *Connection) Database() *mongo.Database {
	return c.database
}

// Ping checks if the database connection is alive
func (c *Connection) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the MongoDB connection
func (c *Connection) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.WithError(err).Error("Error disconnecting from MongoDB")
		return err
	}

	c.logger.Info("Disconnected from MongoDB")
	return nil
}

// extractDatabaseName extracts database name from MongoDB URI
func extractDatabaseName(uri string) string {
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] != '/' {
			continue
		}
		if i > 0 && uri[i-1] == '/' {
			break
		}
		dbName := uri[i+1:]
		for j, char := range dbName {
			if char == '?' {
				dbName = dbName[:j]
				break
			}
		}
		if dbName != "" && dbName != "admin" {
			return dbName
		}
		break
	}

	return defaultDatabaseName
}
