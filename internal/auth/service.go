package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/studiofief/lune/internal/platform/httpx"
)

// UserFinder is the data access needed by the service.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Service handles login and logout.
type Service struct {
	users    UserFinder
	sessions *SessionStore
}

// NewService builds a Service instance.
func NewService(users UserFinder, sessions *SessionStore) *Service {
	return &Service{users: users, sessions: sessions}
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", httpx.ErrValidation)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthenticated)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthenticated)
	}
	return s.sessions.Create(ctx, user.ID, user.Email)
}

// Logout revokes the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// Resolve returns the session behind a bearer token, nil when absent.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	return s.sessions.Load(ctx, token)
}
