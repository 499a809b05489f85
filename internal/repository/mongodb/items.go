package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

// ItemRepository persists items and their transaction arrays. An item
// document is the unit of atomicity: inserting an item and pushing a
// transaction are each single operations, so a failed write never leaves a
// partial movement behind.
type ItemRepository struct {
	coll *mongo.Collection
}

// FindByKey looks an item up by its case-folded name key. A missing item is
// reported as (nil, nil), not an error.
func (r *ItemRepository) FindByKey(ctx context.Context, nameKey string) (*models.Item, error) {
	var item models.Item
	err := r.coll.FindOne(ctx, bson.M{"nameKey": nameKey}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %q: %w", nameKey, errors.Join(models.ErrStorage, err))
	}
	return &item, nil
}

// FindAll returns every item with its full transaction history.
func (r *ItemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", errors.Join(models.ErrStorage, err))
	}
	defer cursor.Close(ctx)

	items := make([]models.Item, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", errors.Join(models.ErrStorage, err))
	}
	return items, nil
}

// Insert stores a new item document. A unique-index collision on the name
// key is reported as ErrDuplicateItem so callers can distinguish a race on
// creation from a storage outage.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	_, err := r.coll.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert item %q: %w", item.Name, models.ErrDuplicateItem)
	}
	if err != nil {
		return fmt.Errorf("insert item %q: %w", item.Name, errors.Join(models.ErrStorage, err))
	}
	return nil
}

// AppendTransaction pushes one movement onto an existing item's transaction
// array.
func (r *ItemRepository) AppendTransaction(ctx context.Context, nameKey string, tx models.Transaction) error {
	update := bson.M{
		"$push": bson.M{"transactions": tx},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"nameKey": nameKey}, update)
	if err != nil {
		return fmt.Errorf("append transaction to %q: %w", nameKey, errors.Join(models.ErrStorage, err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("append transaction to %q: item vanished: %w", nameKey, models.ErrStorage)
	}
	return nil
}
