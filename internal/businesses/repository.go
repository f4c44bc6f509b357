package businesses

import (
	"context"

	"github.com/studiofief/lune/internal/shared"
)

// RepositoryPort defines data access for businesses and memberships.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Business, error)
	UpdateSettings(ctx context.Context, id int64, patch UpdateSettingsRequest) (*Business, error)
	MemberRole(ctx context.Context, businessID, userID int64) (shared.Role, error)
}
