package reading

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=reading

// Repository stores readings. Every method is scoped to the owning user and
// only links readings to books that user owns.
type Repository interface {
	ListByOwner(ctx context.Context, userID string) ([]Reading, error)
	Create(ctx context.Context, userID string, in Input) (Reading, error)
	Update(ctx context.Context, userID, id string, p Patch) (Reading, error)
	Delete(ctx context.Context, userID, id string) error
}
