package clients

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

const clientColumns = `id, business_id, kind, name, email, phone, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.BusinessID, &c.Kind, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a client row.
func (r *Repository) Create(ctx context.Context, client Client) (*Client, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO clients (business_id, kind, name, email, phone, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING `+clientColumns,
		client.BusinessID, client.Kind, client.Name, client.Email, client.Phone, client.Notes)
	return scanClient(row)
}

// Get returns one client scoped to the business.
func (r *Repository) Get(ctx context.Context, businessID, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE business_id = $1 AND id = $2`, businessID, id)
	return scanClient(row)
}

// List returns clients matching the filter with a total count.
func (r *Repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := "WHERE business_id = $1"
	args := []any{req.BusinessID}
	argPos := 2

	if req.Kind != nil {
		where += fmt.Sprintf(" AND kind = $%d", argPos)
		args = append(args, *req.Kind)
		argPos++
	}
	if req.Search != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+clientColumns+" FROM clients %s ORDER BY name LIMIT $%d OFFSET $%d", where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Kind, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

// Update patches a client row.
func (r *Repository) Update(ctx context.Context, businessID, id int64, patch UpdateClientRequest) (*Client, error) {
	query := "UPDATE clients SET updated_at = NOW()"
	var args []any
	argPos := 1

	appendSet := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argPos)
		args = append(args, value)
		argPos++
	}
	if patch.Kind != nil {
		appendSet("kind", *patch.Kind)
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Email != nil {
		appendSet("email", *patch.Email)
	}
	if patch.Phone != nil {
		appendSet("phone", *patch.Phone)
	}
	if patch.Notes != nil {
		appendSet("notes", *patch.Notes)
	}

	query += fmt.Sprintf(" WHERE business_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, businessID, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: client", httpx.ErrNotFound)
	}
	return r.Get(ctx, businessID, id)
}

// Delete removes a client row.
func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client", httpx.ErrNotFound)
	}
	return nil
}
