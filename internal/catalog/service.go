package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/studiofief/lune/internal/platform/httpx"
)

// Manager handles catalog logic.
type Manager struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewManager builds a Manager instance.
func NewManager(repo RepositoryPort) *Manager {
	return &Manager{repo: repo, validate: validator.New()}
}

// Create adds a catalog service.
func (m *Manager) Create(ctx context.Context, businessID int64, req CreateServiceRequest) (*Service, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return m.repo.Create(ctx, Service{
		BusinessID:   businessID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DayRateCents: req.DayRateCents,
		Unit:         req.Unit,
	})
}

// Get returns one catalog service.
func (m *Manager) Get(ctx context.Context, businessID, id int64) (*Service, error) {
	return m.repo.Get(ctx, businessID, id)
}

// List returns the catalog of a business.
func (m *Manager) List(ctx context.Context, businessID int64, includeArchived bool) ([]Service, error) {
	return m.repo.List(ctx, businessID, includeArchived)
}

// Update patches a catalog service.
func (m *Manager) Update(ctx context.Context, businessID, id int64, patch UpdateServiceRequest) (*Service, error) {
	if err := m.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return m.repo.Update(ctx, businessID, id, patch)
}

// Delete removes a catalog service.
func (m *Manager) Delete(ctx context.Context, businessID, id int64) error {
	return m.repo.Delete(ctx, businessID, id)
}
