package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Read(ctx context.Context, id string) (Book, error)
	// Update writes b to the record identified by id. When partial is true
	// only non-empty fields are applied and the rest of the row is left as is.
	Update(ctx context.Context, id string, b Book, partial bool) error
}
