// internal/output/mongodb.go
package output

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWriter persists the result table as one document per row.
type MongoWriter struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoWriter connects to the configured deployment.
func NewMongoWriter(ctx context.Context, uri, database, collection string) (*MongoWriter, error) {
	if uri == "" {
		return nil, fmt.Errorf("MongoDB URI is required")
	}
	if database == "" || collection == "" {
		return nil, fmt.Errorf("MongoDB database and collection are required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoWriter{
		client:     client,
		database:   database,
		collection: collection,
	}, nil
}

// Write inserts every row. Columns absent from a row are stored as null
// so documents stay shape-compatible.
func (w *MongoWriter) Write(ctx context.Context, table *Table) error {
	if len(table.Rows) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(table.Rows))
	for _, row := range table.Rows {
		doc := bson.M{"scraped_at": time.Now().UTC()}
		for _, column := range table.Columns {
			if v, ok := row[column]; ok {
				doc[column] = v
			} else {
				doc[column] = nil
			}
		}
		docs = append(docs, doc)
	}

	coll := w.client.Database(w.database).Collection(w.collection)
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

// Close disconnects from the deployment.
func (w *MongoWriter) Close() error {
	if w.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := w.client.Disconnect(ctx)
	w.client = nil
	return err
}

// Format returns the sink format name.
func (w *MongoWriter) Format() string { return "mongodb" }
