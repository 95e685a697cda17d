package auth

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Token is what a successful login hands back to the client.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
}

type Service struct {
	secret      string
	ttl         time.Duration
	userService *user.Service
}

func NewService(secret string, ttl time.Duration, userService *user.Service) *Service {
	return &Service{
		secret:      secret,
		ttl:         ttl,
		userService: userService,
	}
}

func (s *Service) Register(ctx context.Context, email, username, password string) (user.User, error) {
	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	return s.userService.Register(ctx, email, username, hashed)
}

func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.userService.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Token{}, ErrUnauthorized
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Token{}, ErrUnauthorized
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		UserID:      u.ID,
	}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (user.User, error) {
	u, err := s.userService.GetByID(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrUnauthorized
	}
	return u, err
}
