package projects

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// CatalogPort is the catalog access the pricing resolver needs.
type CatalogPort interface {
	Get(ctx context.Context, businessID, id int64) (*catalog.Service, error)
	List(ctx context.Context, businessID int64, includeArchived bool) ([]catalog.Service, error)
}

// Service handles project and pricing-line logic.
type Service struct {
	repo     RepositoryPort
	catalog  CatalogPort
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, catalogPort CatalogPort) *Service {
	return &Service{repo: repo, catalog: catalogPort, validate: validator.New()}
}

// Create adds a project.
func (s *Service) Create(ctx context.Context, businessID int64, req CreateProjectRequest) (*Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.CreateProject(ctx, Project{
		BusinessID: businessID,
		ClientID:   req.ClientID,
		Name:       req.Name,
		Status:     StatusActive,
		Notes:      req.Notes,
	})
}

// Get returns one project scoped to the business.
func (s *Service) Get(ctx context.Context, businessID, id int64) (*Project, error) {
	return s.repo.GetProject(ctx, businessID, id)
}

// List returns projects matching the filter.
func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	req.Limit, req.Offset = shared.NormalizePage(req.Limit, req.Offset)
	return s.repo.ListProjects(ctx, req)
}

// Update patches a project.
func (s *Service) Update(ctx context.Context, businessID, id int64, patch UpdateProjectRequest) (*Project, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.UpdateProject(ctx, businessID, id, patch)
}

// AddLine attaches a catalog service to a project as a priced line.
func (s *Service) AddLine(ctx context.Context, businessID, projectID int64, req AddLineRequest) (*ServiceLine, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetProject(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.Get(ctx, businessID, req.CatalogServiceID); err != nil {
		return nil, fmt.Errorf("verify catalog service: %w", err)
	}
	line := ServiceLine{
		ProjectID:        projectID,
		CatalogServiceID: req.CatalogServiceID,
		Quantity:         normalizeQuantity(req.Quantity),
		PriceCents:       req.PriceCents,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		BillingUnit:      req.BillingUnit,
		UnitLabel:        req.UnitLabel,
		TitleOverride:    req.TitleOverride,
		Description:      req.Description,
	}
	if line.DiscountType == "" {
		line.DiscountType = DiscountNone
	}
	if line.BillingUnit == "" {
		line.BillingUnit = BillingOneOff
	}
	if line.BillingUnit == BillingMonthly && line.UnitLabel == "" {
		line.UnitLabel = DefaultMonthlyUnitLabel
	}
	return s.repo.AddLine(ctx, line)
}

// UpdateLine patches a service line.
func (s *Service) UpdateLine(ctx context.Context, businessID, projectID, lineID int64, patch UpdateLineRequest) (*ServiceLine, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetProject(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	return s.repo.UpdateLine(ctx, projectID, lineID, patch)
}

// DeleteLine removes a service line.
func (s *Service) DeleteLine(ctx context.Context, businessID, projectID, lineID int64) error {
	if _, err := s.repo.GetProject(ctx, businessID, projectID); err != nil {
		return err
	}
	return s.repo.DeleteLine(ctx, projectID, lineID)
}

// ResolvedPricing resolves every line of a project against the catalog.
func (s *Service) ResolvedPricing(ctx context.Context, businessID, projectID int64) ([]PricedLine, error) {
	if _, err := s.repo.GetProject(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLines(ctx, projectID)
	if err != nil {
		return nil, err
	}
	services, err := s.catalog.List(ctx, businessID, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	return ResolveLines(lines, byID), nil
}

// SetReferenceQuote stores the designated reference quote id on the project.
// Status validation is the quote service's responsibility.
func (s *Service) SetReferenceQuote(ctx context.Context, businessID, projectID int64, quoteID *int64) error {
	if _, err := s.repo.GetProject(ctx, businessID, projectID); err != nil {
		return err
	}
	return s.repo.SetReferenceQuote(ctx, projectID, quoteID)
}
