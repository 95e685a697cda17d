package reading

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's readings with their book summaries, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Reading, error) {
	readings, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []Reading{}
	}
	return readings, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Reading, error) {
	if err := in.Validate(); err != nil {
		return Reading{}, err
	}
	return s.repo.Create(ctx, userID, in.Normalize())
}

func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (Reading, error) {
	if err := p.Validate(); err != nil {
		return Reading{}, err
	}
	return s.repo.Update(ctx, userID, id, p)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
