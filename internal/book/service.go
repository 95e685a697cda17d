package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's books, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Book, error) {
	books, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	return s.repo.Create(ctx, userID, in.Normalize())
}

func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (Book, error) {
	if err := p.Validate(); err != nil {
		return Book{}, err
	}
	return s.repo.Update(ctx, userID, id, p)
}

// Delete removes the book. Its readings go with it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
