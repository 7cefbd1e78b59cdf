package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/semaphore"

	"github.com/wearella/marketpulse/internal/config"
)

const uploadRecordsCollection = "uploadrecords"

// DB wraps the mongo database with a semaphore bounding concurrent
// operations, so one large drill-down cannot starve the pool.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
	sem      *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB connects to MongoDB and pings it before returning.
func NewDB(cfg *config.MongoConfig) (*DB, error) {
	var err error
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(cfg.URI).
			SetMaxPoolSize(25).
			SetConnectTimeout(10 * time.Second)

		var client *mongo.Client
		client, err = mongo.Connect(ctx, opts)
		if err != nil {
			err = fmt.Errorf("could not connect to mongo: %w", err)
			return
		}

		if err = client.Ping(ctx, nil); err != nil {
			err = fmt.Errorf("mongo ping failed: %w", err)
			return
		}

		dbInstance = &DB{
			client:   client,
			database: client.Database(cfg.Database),
			sem:      semaphore.NewWeighted(10), // Limit to 10 concurrent operations
		}
	})

	return dbInstance, err
}

// Collection returns the named collection handle.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

// Close disconnects the underlying client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// withSem runs fn under the operation semaphore.
func (db *DB) withSem(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)
	return fn(ctx)
}

// EnsureIndexes creates the natural-key and date-range indexes. Index
// creation is idempotent; failures are logged but not fatal so the server
// still starts against a read-only deployment.
func (db *DB) EnsureIndexes(ctx context.Context) {
	coll := db.Collection(uploadRecordsCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "platform", Value: 1},
				{Key: "dateRange", Value: 1},
				{Key: "reportType", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("natural_key"),
		},
		{
			Keys: bson.D{
				{Key: "startDate", Value: -1},
				{Key: "endDate", Value: -1},
			},
			Options: options.Index().SetName("date_range"),
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not ensure upload record indexes")
	}
}
