package projects

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

const projectColumns = `id, business_id, client_id, name, status, notes, reference_quote_id, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.BusinessID, &p.ClientID, &p.Name, &p.Status, &p.Notes, &p.ReferenceQuoteID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project row.
func (r *Repository) CreateProject(ctx context.Context, project Project) (*Project, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO projects (business_id, client_id, name, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING `+projectColumns,
		project.BusinessID, project.ClientID, project.Name, project.Status, project.Notes)
	return scanProject(row)
}

// GetProject returns one project scoped to the business.
func (r *Repository) GetProject(ctx context.Context, businessID, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE business_id = $1 AND id = $2`, businessID, id)
	return scanProject(row)
}

// ListProjects returns projects matching the filter with a total count.
func (r *Repository) ListProjects(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	where := "WHERE business_id = $1"
	args := []any{req.BusinessID}
	argPos := 2

	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+projectColumns+" FROM projects %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.ClientID, &p.Name, &p.Status, &p.Notes, &p.ReferenceQuoteID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

// UpdateProject patches a project row.
func (r *Repository) UpdateProject(ctx context.Context, businessID, id int64, patch UpdateProjectRequest) (*Project, error) {
	query := "UPDATE projects SET updated_at = NOW()"
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
	if patch.Status != nil {
		appendSet("status", *patch.Status)
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
		return nil, fmt.Errorf("%w: project", httpx.ErrNotFound)
	}
	return r.GetProject(ctx, businessID, id)
}

// SetReferenceQuote stores or clears the designated reference quote.
func (r *Repository) SetReferenceQuote(ctx context.Context, projectID int64, quoteID *int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE projects SET reference_quote_id = $1, updated_at = NOW() WHERE id = $2`, quoteID, projectID)
	return err
}

const lineColumns = `id, project_id, catalog_service_id, quantity, price_cents, discount_type, discount_value, billing_unit, unit_label, title_override, description, position, created_at, updated_at`

func scanLine(row pgx.Row) (*ServiceLine, error) {
	var l ServiceLine
	err := row.Scan(&l.ID, &l.ProjectID, &l.CatalogServiceID, &l.Quantity, &l.PriceCents, &l.DiscountType, &l.DiscountValue, &l.BillingUnit, &l.UnitLabel, &l.TitleOverride, &l.Description, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: service line", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &l, nil
}

// AddLine inserts a service line at the next display position.
func (r *Repository) AddLine(ctx context.Context, line ServiceLine) (*ServiceLine, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO project_services (project_id, catalog_service_id, quantity, price_cents, discount_type, discount_value, billing_unit, unit_label, title_override, description, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
        (SELECT COALESCE(MAX(position), 0) + 1 FROM project_services WHERE project_id = $1),
        NOW(), NOW())
RETURNING `+lineColumns,
		line.ProjectID, line.CatalogServiceID, line.Quantity, line.PriceCents, line.DiscountType, line.DiscountValue, line.BillingUnit, line.UnitLabel, line.TitleOverride, line.Description)
	return scanLine(row)
}

// GetLine returns one service line.
func (r *Repository) GetLine(ctx context.Context, projectID, lineID int64) (*ServiceLine, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+lineColumns+` FROM project_services WHERE project_id = $1 AND id = $2`, projectID, lineID)
	return scanLine(row)
}

// ListLines returns the lines of a project in display order.
func (r *Repository) ListLines(ctx context.Context, projectID int64) ([]ServiceLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lineColumns+` FROM project_services WHERE project_id = $1 ORDER BY position, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ServiceLine
	for rows.Next() {
		var l ServiceLine
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.CatalogServiceID, &l.Quantity, &l.PriceCents, &l.DiscountType, &l.DiscountValue, &l.BillingUnit, &l.UnitLabel, &l.TitleOverride, &l.Description, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpdateLine patches a service line row.
func (r *Repository) UpdateLine(ctx context.Context, projectID, lineID int64, patch UpdateLineRequest) (*ServiceLine, error) {
	query := "UPDATE project_services SET updated_at = NOW()"
	var args []any
	argPos := 1

	appendSet := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argPos)
		args = append(args, value)
		argPos++
	}
	if patch.Quantity != nil {
		appendSet("quantity", *patch.Quantity)
	}
	switch {
	case patch.ClearPrice:
		query += ", price_cents = NULL"
	case patch.PriceCents != nil:
		appendSet("price_cents", *patch.PriceCents)
	}
	if patch.DiscountType != nil {
		appendSet("discount_type", *patch.DiscountType)
	}
	if patch.DiscountValue != nil {
		appendSet("discount_value", *patch.DiscountValue)
	}
	if patch.BillingUnit != nil {
		appendSet("billing_unit", *patch.BillingUnit)
	}
	if patch.UnitLabel != nil {
		appendSet("unit_label", *patch.UnitLabel)
	}
	if patch.TitleOverride != nil {
		appendSet("title_override", *patch.TitleOverride)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Position != nil {
		appendSet("position", *patch.Position)
	}

	query += fmt.Sprintf(" WHERE project_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, projectID, lineID)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: service line", httpx.ErrNotFound)
	}
	return r.GetLine(ctx, projectID, lineID)
}

// DeleteLine removes a service line row.
func (r *Repository) DeleteLine(ctx context.Context, projectID, lineID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_services WHERE project_id = $1 AND id = $2`, projectID, lineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: service line", httpx.ErrNotFound)
	}
	return nil
}
