// internal/output/mongodb.go
package output

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/utils"
)

var mongoLogger = utils.NewComponentLogger("mongodb-output")

// MongoWriter upserts lead documents into a collection, keyed on the profile
// URL. A unique index on the key field backs the idempotence guarantee: the
// same profile scraped twice converges to one document.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoWriter connects to MongoDB and ensures the unique key index.
func NewMongoWriter(ctx context.Context, cfg config.MongoDBConfig) (*MongoWriter, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MongoDB URI is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("MongoDB database and collection are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	w := &MongoWriter{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    timeout,
	}

	if err := w.ensureIndex(ctx); err != nil {
		w.Close()
		return nil, err
	}

	return w, nil
}

func (w *MongoWriter) ensureIndex(ctx context.Context) error {
	indexCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	_, err := w.collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: KeyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on %s: %w", KeyField, err)
	}
	return nil
}

// Write implements Writer. Records without a key are skipped with a warning
// rather than failing the batch.
func (w *MongoWriter) Write(ctx context.Context, records []map[string]interface{}) error {
	upserted := 0
	for _, record := range records {
		key := recordKey(record)
		if key == "" {
			mongoLogger.Warnf("skipping record without %s field", KeyField)
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, w.timeout)
		_, err := w.collection.ReplaceOne(
			writeCtx,
			bson.M{KeyField: key},
			record,
			options.Replace().SetUpsert(true),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", key, err)
		}
		upserted++
	}

	mongoLogger.Infof("upserted %d documents into %s", upserted, w.collection.Name())
	return nil
}

// Close implements Writer.
func (w *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	return w.client.Disconnect(ctx)
}
