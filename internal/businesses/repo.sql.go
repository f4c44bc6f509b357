package businesses

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns a business by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Business, error) {
	var b Business
	err := r.pool.QueryRow(ctx, `SELECT id, name, currency, vat_enabled, vat_rate_percent, default_deposit_percent, created_at, updated_at
FROM businesses WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Currency, &b.VATEnabled, &b.VATRatePercent, &b.DefaultDepositPercent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: business %d", httpx.ErrNotFound, id)
		}
		return nil, err
	}
	return &b, nil
}

// UpdateSettings patches the mutable settings of a business.
func (r *Repository) UpdateSettings(ctx context.Context, id int64, patch UpdateSettingsRequest) (*Business, error) {
	query := "UPDATE businesses SET updated_at = NOW()"
	var args []any
	argPos := 1

	appendSet := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argPos)
		args = append(args, value)
		argPos++
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Currency != nil {
		appendSet("currency", *patch.Currency)
	}
	if patch.VATEnabled != nil {
		appendSet("vat_enabled", *patch.VATEnabled)
	}
	if patch.VATRatePercent != nil {
		appendSet("vat_rate_percent", *patch.VATRatePercent)
	}
	if patch.DefaultDepositPercent != nil {
		appendSet("default_deposit_percent", *patch.DefaultDepositPercent)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// MemberRole resolves the role of a user inside a business.
func (r *Repository) MemberRole(ctx context.Context, businessID, userID int64) (shared.Role, error) {
	var role shared.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM business_members WHERE business_id = $1 AND user_id = $2`, businessID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: not a member of business %d", httpx.ErrForbidden, businessID)
		}
		return "", err
	}
	return role, nil
}
