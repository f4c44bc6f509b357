package catalog

import "context"

// RepositoryPort defines data access for the catalog.
type RepositoryPort interface {
	Create(ctx context.Context, service Service) (*Service, error)
	Get(ctx context.Context, businessID, id int64) (*Service, error)
	List(ctx context.Context, businessID int64, includeArchived bool) ([]Service, error)
	Update(ctx context.Context, businessID, id int64, patch UpdateServiceRequest) (*Service, error)
	Delete(ctx context.Context, businessID, id int64) error
}
