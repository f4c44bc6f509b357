package quotes

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

// Repository provides PostgreSQL backed quote persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quoteColumns = `id, business_id, project_id, number, status, currency, total_cents, deposit_percent, deposit_cents, balance_cents, vat_rate_percent, vat_cents, note, issued_at, signed_at, expires_at, cancel_reason, created_at, updated_at`

const itemColumns = `id, quote_id, label, description, quantity, unit_price_cents, total_cents, unit_label, position`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.BusinessID, &q.ProjectID, &q.Number, &q.Status, &q.Currency,
		&q.TotalCents, &q.DepositPercent, &q.DepositCents, &q.BalanceCents, &q.VATRatePercent, &q.VATCents,
		&q.Note, &q.IssuedAt, &q.SignedAt, &q.ExpiresAt, &q.CancelReason, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: quote", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &q, nil
}

// Create inserts the quote header and its item snapshot in one transaction.
// The quote number comes from the per-business, per-year counter; the counter
// row lock serializes concurrent creates and a deleted quote never frees its
// number.
func (r *Repository) Create(ctx context.Context, quote Quote) (*Quote, error) {
	var created *Quote
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := db.NextDocumentNumber(ctx, tx, quote.BusinessID, "DEV", time.Now().Year())
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `INSERT INTO quotes
(business_id, project_id, number, status, currency, total_cents, deposit_percent, deposit_cents, balance_cents, vat_rate_percent, vat_cents, note, issued_at, signed_at, expires_at, cancel_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL, NULL, $13, '', NOW(), NOW())
RETURNING `+quoteColumns,
			quote.BusinessID, quote.ProjectID, number, quote.Status, quote.Currency,
			quote.TotalCents, quote.DepositPercent, quote.DepositCents, quote.BalanceCents,
			quote.VATRatePercent, quote.VATCents, quote.Note, quote.ExpiresAt)
		q, err := scanQuote(row)
		if err != nil {
			return err
		}
		if err := insertItems(ctx, tx, q.ID, quote.Items); err != nil {
			return err
		}
		created = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Items, err = r.loadItems(ctx, created.ID)
	return created, err
}

func insertItems(ctx context.Context, tx pgx.Tx, quoteID int64, items []Item) error {
	for _, item := range items {
		_, err := tx.Exec(ctx, `INSERT INTO quote_items
(quote_id, label, description, quantity, unit_price_cents, total_cents, unit_label, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			quoteID, item.Label, item.Description, item.Quantity, item.UnitPriceCents, item.TotalCents, item.UnitLabel, item.Position)
		if err != nil {
			return fmt.Errorf("insert quote item: %w", err)
		}
	}
	return nil
}

func (r *Repository) loadItems(ctx context.Context, quoteID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM quote_items WHERE quote_id = $1 ORDER BY position`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.Label, &it.Description, &it.Quantity, &it.UnitPriceCents, &it.TotalCents, &it.UnitLabel, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns one quote with its items.
func (r *Repository) Get(ctx context.Context, businessID, id int64) (*Quote, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE business_id = $1 AND id = $2`, businessID, id)
	quote, err := scanQuote(row)
	if err != nil {
		return nil, err
	}
	quote.Items, err = r.loadItems(ctx, id)
	return quote, err
}

// ListByProject returns the quotes of a project, newest first, items included.
func (r *Repository) ListByProject(ctx context.Context, businessID, projectID int64) ([]Quote, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE business_id = $1 AND project_id = $2 ORDER BY created_at DESC, id DESC`, businessID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].Items, err = r.loadItems(ctx, quotes[i].ID); err != nil {
			return nil, err
		}
	}
	return quotes, nil
}

// UpdateHeader applies a partial header update.
func (r *Repository) UpdateHeader(ctx context.Context, businessID, id int64, patch HeaderPatch) (*Quote, error) {
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
	if patch.ExpiresAt != nil {
		appendSet("expires_at", *patch.ExpiresAt)
	}
	if patch.SignedAt != nil {
		appendSet("signed_at", *patch.SignedAt)
	}

	query := "UPDATE quotes SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE business_id = $1 AND id = $2 RETURNING " + quoteColumns

	quote, err := scanQuote(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	quote.Items, err = r.loadItems(ctx, id)
	return quote, err
}

// ReplaceItems swaps the item snapshot and rewrites the header totals in one
// transaction.
func (r *Repository) ReplaceItems(ctx context.Context, businessID, id int64, items []Item, totals Totals) (*Quote, error) {
	var updated *Quote
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `UPDATE quotes
SET total_cents = $3, deposit_cents = $4, balance_cents = $5, vat_cents = $6, updated_at = NOW()
WHERE business_id = $1 AND id = $2 AND status = 'DRAFT'
RETURNING `+quoteColumns, businessID, id, totals.TotalCents, totals.DepositCents, totals.BalanceCents, totals.VATCents)
		q, err := scanQuote(row)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return fmt.Errorf("%w: quote items are frozen", httpx.ErrLocked)
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, id); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, id, items); err != nil {
			return err
		}
		updated = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.Items, err = r.loadItems(ctx, id)
	return updated, err
}

// Transition applies a status change with the expected current status in the
// WHERE clause. A concurrent transition makes the update match zero rows,
// which surfaces as a conflict.
func (r *Repository) Transition(ctx context.Context, businessID, id int64, current, next Status, signedAt *time.Time, reason string) (*Quote, error) {
	row := r.pool.QueryRow(ctx, `UPDATE quotes
SET status = $3, signed_at = COALESCE($4, signed_at), cancel_reason = CASE WHEN $3 = 'CANCELLED' THEN $5 ELSE cancel_reason END, updated_at = NOW()
WHERE business_id = $1 AND id = $2 AND status = $6
RETURNING `+quoteColumns, businessID, id, next, signedAt, reason, current)
	quote, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: quote status changed concurrently", httpx.ErrConflict)
		}
		return nil, err
	}
	quote.Items, err = r.loadItems(ctx, id)
	return quote, err
}

// Delete removes a quote and its items.
func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM quotes WHERE business_id = $1 AND id = $2`, businessID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: quote", httpx.ErrNotFound)
		}
		return nil
	})
}

// ExpireOverdue marks SENT quotes past their expiry as EXPIRED.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) ([]Quote, error) {
	rows, err := r.pool.Query(ctx, `UPDATE quotes SET status = 'EXPIRED', updated_at = NOW()
WHERE status = 'SENT' AND expires_at IS NOT NULL AND expires_at < $1
RETURNING `+quoteColumns, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *q)
	}
	return expired, rows.Err()
}
