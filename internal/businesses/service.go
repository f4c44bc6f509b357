package businesses

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Service handles business settings.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Get returns the business.
func (s *Service) Get(ctx context.Context, id int64) (*Business, error) {
	return s.repo.Get(ctx, id)
}

// UpdateSettings validates and applies a settings patch.
func (s *Service) UpdateSettings(ctx context.Context, id int64, patch UpdateSettingsRequest) (*Business, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.UpdateSettings(ctx, id, patch)
}

// ResolveRole returns the membership role of a user inside a business.
func (s *Service) ResolveRole(ctx context.Context, businessID, userID int64) (shared.Role, error) {
	return s.repo.MemberRole(ctx, businessID, userID)
}
