package clients

import "context"

// RepositoryPort defines data access for clients.
type RepositoryPort interface {
	Create(ctx context.Context, client Client) (*Client, error)
	Get(ctx context.Context, businessID, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Update(ctx context.Context, businessID, id int64, patch UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, businessID, id int64) error
}
