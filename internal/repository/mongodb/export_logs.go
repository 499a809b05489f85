package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

// ExportLogRepository persists export audit events.
type ExportLogRepository struct {
	coll *mongo.Collection
}

// Insert stores a single export event.
func (r *ExportLogRepository) Insert(ctx context.Context, event models.ExportEvent) error {
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert export log: %w", errors.Join(models.ErrStorage, err))
	}
	return nil
}
