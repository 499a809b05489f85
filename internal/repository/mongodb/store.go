package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	itemsCollection      = "items"
	exportLogsCollection = "export_logs"
)

// Store owns the MongoDB connection shared by the ledger and export log
// repositories.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// EnsureIndexes creates the unique case-folded name index the ledger relies
// on to reject duplicate item registrations.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	coll := s.client.Database(s.dbName).Collection(itemsCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nameKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create items nameKey index: %w", err)
	}
	return nil
}

// Items returns the item ledger repository bound to this connection.
func (s *Store) Items() *ItemRepository {
	return &ItemRepository{coll: s.client.Database(s.dbName).Collection(itemsCollection)}
}

// ExportLogs returns the export log repository bound to this connection.
func (s *Store) ExportLogs() *ExportLogRepository {
	return &ExportLogRepository{coll: s.client.Database(s.dbName).Collection(exportLogsCollection)}
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
