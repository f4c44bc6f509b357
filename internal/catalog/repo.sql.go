package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofief/lune/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const serviceColumns = `id, business_id, name, description, price_cents, day_rate_cents, unit, archived, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.PriceCents, &s.DayRateCents, &s.Unit, &s.Archived, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: catalog service", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a catalog row.
func (r *Repository) Create(ctx context.Context, service Service) (*Service, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO catalog_services (business_id, name, description, price_cents, day_rate_cents, unit, archived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW()) RETURNING `+serviceColumns,
		service.BusinessID, service.Name, service.Description, service.PriceCents, service.DayRateCents, service.Unit)
	return scanService(row)
}

// Get returns one catalog service scoped to the business.
func (r *Repository) Get(ctx context.Context, businessID, id int64) (*Service, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM catalog_services WHERE business_id = $1 AND id = $2`, businessID, id)
	return scanService(row)
}

// List returns the catalog of a business.
func (r *Repository) List(ctx context.Context, businessID int64, includeArchived bool) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM catalog_services WHERE business_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.PriceCents, &s.DayRateCents, &s.Unit, &s.Archived, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Update patches a catalog row.
func (r *Repository) Update(ctx context.Context, businessID, id int64, patch UpdateServiceRequest) (*Service, error) {
	query := "UPDATE catalog_services SET updated_at = NOW()"
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
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.PriceCents != nil {
		appendSet("price_cents", *patch.PriceCents)
	}
	if patch.DayRateCents != nil {
		appendSet("day_rate_cents", *patch.DayRateCents)
	}
	if patch.Unit != nil {
		appendSet("unit", *patch.Unit)
	}
	if patch.Archived != nil {
		appendSet("archived", *patch.Archived)
	}

	query += fmt.Sprintf(" WHERE business_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, businessID, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: catalog service", httpx.ErrNotFound)
	}
	return r.Get(ctx, businessID, id)
}

// Delete removes a catalog row.
func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_services WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: catalog service", httpx.ErrNotFound)
	}
	return nil
}
