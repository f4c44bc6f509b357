package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofief/lune/internal/platform/db"
	"github.com/studiofief/lune/internal/platform/httpx"
)

// Repository provides PostgreSQL backed invoice persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, business_id, project_id, quote_id, number, status, payment_status, currency, total_cents, paid_cents, note, issued_at, due_at, paid_at, cancel_reason, created_at, updated_at`

const invoiceItemColumns = `id, invoice_id, label, description, quantity, unit_price_cents, total_cents, unit_label, position`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.BusinessID, &inv.ProjectID, &inv.QuoteID, &inv.Number, &inv.Status, &inv.PaymentStatus,
		&inv.Currency, &inv.TotalCents, &inv.PaidCents, &inv.Note, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.CancelReason,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &inv, nil
}

const insertInvoiceSQL = `INSERT INTO invoices
(business_id, project_id, quote_id, number, status, payment_status, currency, total_cents, paid_cents, note, issued_at, due_at, paid_at, cancel_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, NULL, NULL, NULL, '', NOW(), NOW())
RETURNING ` + invoiceColumns

// CreateFromQuote inserts the invoice guarded by the one-non-cancelled
// invoice-per-quote rule. The quote row is locked first so two concurrent
// creates serialize instead of both passing the count on the same snapshot.
func (r *Repository) CreateFromQuote(ctx context.Context, invoice Invoice) (*Invoice, error) {
	var created *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var quoteID int64
		err := tx.QueryRow(ctx, `SELECT id FROM quotes WHERE id = $1 FOR UPDATE`, *invoice.QuoteID).Scan(&quoteID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: quote", httpx.ErrNotFound)
			}
			return err
		}
		var existing int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE quote_id = $1 AND status <> 'CANCELLED'`, *invoice.QuoteID).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: quote already has an invoice", httpx.ErrValidation)
		}
		inv, err := insertInvoice(ctx, tx, invoice)
		if err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Items, err = r.loadItems(ctx, created.ID)
	return created, err
}

// CreateStaged inserts the invoice after re-validating the invoiced sum
// against the reference total. The project row is locked first so two
// concurrent staged creations serialize and the second one sees the first
// one's insert.
func (r *Repository) CreateStaged(ctx context.Context, invoice Invoice, limitCents int64) (*Invoice, error) {
	var created *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var projectID int64
		err := tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, invoice.ProjectID).Scan(&projectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: project", httpx.ErrNotFound)
			}
			return err
		}
		var invoiced int64
		if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(total_cents), 0) FROM invoices WHERE project_id = $1 AND status <> 'CANCELLED'`, invoice.ProjectID).Scan(&invoiced); err != nil {
			return err
		}
		if invoiced+invoice.TotalCents > limitCents {
			return fmt.Errorf("%w: project already invoiced %d of %d cents", httpx.ErrOverLimit, invoiced, limitCents)
		}
		inv, err := insertInvoice(ctx, tx, invoice)
		if err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Items, err = r.loadItems(ctx, created.ID)
	return created, err
}

func insertInvoice(ctx context.Context, tx pgx.Tx, invoice Invoice) (*Invoice, error) {
	number, err := db.NextDocumentNumber(ctx, tx, invoice.BusinessID, "FAC", time.Now().Year())
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, insertInvoiceSQL,
		invoice.BusinessID, invoice.ProjectID, invoice.QuoteID, number, invoice.Status, invoice.PaymentStatus,
		invoice.Currency, invoice.TotalCents, invoice.Note)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}
	for _, item := range invoice.Items {
		_, err := tx.Exec(ctx, `INSERT INTO invoice_items
(invoice_id, label, description, quantity, unit_price_cents, total_cents, unit_label, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			inv.ID, item.Label, item.Description, item.Quantity, item.UnitPriceCents, item.TotalCents, item.UnitLabel, item.Position)
		if err != nil {
			return nil, fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return inv, nil
}

func (r *Repository) loadItems(ctx context.Context, invoiceID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceItemColumns+` FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Label, &it.Description, &it.Quantity, &it.UnitPriceCents, &it.TotalCents, &it.UnitLabel, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns one invoice with its items.
func (r *Repository) Get(ctx context.Context, businessID, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE business_id = $1 AND id = $2`, businessID, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}
	invoice.Items, err = r.loadItems(ctx, id)
	return invoice, err
}

// ListByProject returns the invoices of a project, newest first, items
// included.
func (r *Repository) ListByProject(ctx context.Context, businessID, projectID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE business_id = $1 AND project_id = $2 ORDER BY created_at DESC, id DESC`, businessID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].Items, err = r.loadItems(ctx, invoices[i].ID); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// SumInvoiced sums non-cancelled invoice totals of a project.
func (r *Repository) SumInvoiced(ctx context.Context, projectID int64) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_cents), 0) FROM invoices WHERE project_id = $1 AND status <> 'CANCELLED'`, projectID).Scan(&sum)
	return sum, err
}

// UpdateHeader applies a partial header update.
func (r *Repository) UpdateHeader(ctx context.Context, businessID, id int64, patch HeaderPatch) (*Invoice, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{businessID, id}
	argPos := 3

	appendSet := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	if patch.Note != nil {
		appendSet("note", *patch.Note)
	}
	if patch.IssuedAt != nil {
		appendSet("issued_at", *patch.IssuedAt)
	}
	if patch.DueAt != nil {
		appendSet("due_at", *patch.DueAt)
	}
	if patch.PaidAt != nil {
		appendSet("paid_at", *patch.PaidAt)
	}

	query := "UPDATE invoices SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE business_id = $1 AND id = $2 RETURNING " + invoiceColumns

	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	invoice.Items, err = r.loadItems(ctx, id)
	return invoice, err
}

// ReplaceItems swaps the item set and rewrites the total in one transaction.
func (r *Repository) ReplaceItems(ctx context.Context, businessID, id int64, items []Item, totalCents int64) (*Invoice, error) {
	var updated *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `UPDATE invoices SET total_cents = $3, updated_at = NOW()
WHERE business_id = $1 AND id = $2 AND status = 'DRAFT'
RETURNING `+invoiceColumns, businessID, id, totalCents)
		inv, err := scanInvoice(row)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return fmt.Errorf("%w: invoice items are frozen", httpx.ErrLocked)
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, `INSERT INTO invoice_items
(invoice_id, label, description, quantity, unit_price_cents, total_cents, unit_label, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				id, item.Label, item.Description, item.Quantity, item.UnitPriceCents, item.TotalCents, item.UnitLabel, item.Position)
			if err != nil {
				return err
			}
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.Items, err = r.loadItems(ctx, id)
	return updated, err
}

// Transition applies a status change with the expected current status in the
// WHERE clause.
func (r *Repository) Transition(ctx context.Context, businessID, id int64, current, next Status, reason string) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `UPDATE invoices
SET status = $3, cancel_reason = CASE WHEN $3 = 'CANCELLED' THEN $4 ELSE cancel_reason END, updated_at = NOW()
WHERE business_id = $1 AND id = $2 AND status = $5
RETURNING `+invoiceColumns, businessID, id, next, reason, current)
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice status changed concurrently", httpx.ErrConflict)
		}
		return nil, err
	}
	invoice.Items, err = r.loadItems(ctx, id)
	return invoice, err
}

// Delete removes an invoice and its items.
func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE business_id = $1 AND id = $2`, businessID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: invoice", httpx.ErrNotFound)
		}
		return nil
	})
}

// ListOverdue returns SENT invoices past their due date.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE status = 'SENT' AND due_at IS NOT NULL AND due_at < $1 ORDER BY due_at`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		overdue = append(overdue, *inv)
	}
	return overdue, rows.Err()
}
