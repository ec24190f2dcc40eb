package repository

import (
	"context"

	"photoapi/internal/model"
)

// CollectionRepository defines data access for collections and their photos.
// No business logic here, strictly persistence operations.
type CollectionRepository interface {
	// FindWithPhotos returns a collection with its photos nested, ordered by creation time.
	// It returns sql.ErrNoRows when the collection does not exist.
	FindWithPhotos(ctx context.Context, id string) (*model.Collection, error)

	// List returns a paginated list of collections (without photos) and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Collection], error)

	// CreatePhoto inserts a photo row and returns the stored record.
	CreatePhoto(ctx context.Context, p *model.Photo) (*model.Photo, error)

	// DeletePhotos removes every photo whose ID is in ids in one statement.
	// Missing IDs are not an error.
	DeletePhotos(ctx context.Context, ids []string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
