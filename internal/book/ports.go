package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage. Every method is
// scoped to the owning user.
type Repository interface {
	ListByOwner(ctx context.Context, userID string) ([]Book, error)
	Create(ctx context.Context, userID string, in Input) (Book, error)
	Update(ctx context.Context, userID, id string, p Patch) (Book, error)
	Delete(ctx context.Context, userID, id string) error
}
