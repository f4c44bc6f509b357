package clients

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Service handles client directory logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create adds a client or prospect.
func (s *Service) Create(ctx context.Context, businessID int64, req CreateClientRequest) (*Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Create(ctx, Client{
		BusinessID: businessID,
		Kind:       req.Kind,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
	})
}

// Get returns one client scoped to the business.
func (s *Service) Get(ctx context.Context, businessID, id int64) (*Client, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	req.Limit, req.Offset = shared.NormalizePage(req.Limit, req.Offset)
	return s.repo.List(ctx, req)
}

// Update patches a client.
func (s *Service) Update(ctx context.Context, businessID, id int64, patch UpdateClientRequest) (*Client, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Update(ctx, businessID, id, patch)
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	return s.repo.Delete(ctx, businessID, id)
}
