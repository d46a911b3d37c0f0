package shared

import (
	"context"
)

// Repository is the base interface for all record repositories.
// Listing returns the full record set in reverse-chronological order;
// filtering happens in memory through the list-view engine.
type Repository[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
