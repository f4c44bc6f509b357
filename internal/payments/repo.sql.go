package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/platform/db"
	"github.com/studiofief/lune/internal/platform/httpx"
)

// InvoiceReader reloads an invoice after the ledger rewrote its derived
// state.
type InvoiceReader interface {
	Get(ctx context.Context, businessID, id int64) (*invoices.Invoice, error)
}

// Repository provides PostgreSQL backed ledger persistence.
type Repository struct {
	pool     *pgxpool.Pool
	invoices InvoiceReader
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, invoices InvoiceReader) *Repository {
	return &Repository{pool: pool, invoices: invoices}
}

const paymentColumns = `id, business_id, invoice_id, amount_cents, paid_at, method, reference, note, created_by, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BusinessID, &p.InvoiceID, &p.AmountCents, &p.PaidAt, &p.Method, &p.Reference, &p.Note, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// invoiceState is the slice of invoice columns the ledger rewrites.
type invoiceState struct {
	id         int64
	businessID int64
	projectID  int64
	status     invoices.Status
	totalCents int64
	paidAt     *time.Time
}

func lockInvoice(ctx context.Context, tx pgx.Tx, businessID, invoiceID int64) (*invoiceState, error) {
	var st invoiceState
	err := tx.QueryRow(ctx, `SELECT id, business_id, project_id, status, total_cents, paid_at
FROM invoices WHERE business_id = $1 AND id = $2 FOR UPDATE`, businessID, invoiceID).
		Scan(&st.id, &st.businessID, &st.projectID, &st.status, &st.totalCents, &st.paidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &st, nil
}

func sumPayments(ctx context.Context, tx pgx.Tx, invoiceID int64) (int64, error) {
	var sum int64
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE invoice_id = $1`, invoiceID).Scan(&sum)
	return sum, err
}

// writeDerivedState rewrites paid_cents, payment_status, status and paid_at
// from the new payment sum. PAID is entered when payments cover the total
// and left again when they no longer do.
func writeDerivedState(ctx context.Context, tx pgx.Tx, st *invoiceState, paidCents int64) error {
	paymentStatus := DerivePaymentStatus(paidCents, st.totalCents)
	status := st.status
	var paidAt any
	if st.paidAt != nil {
		paidAt = *st.paidAt
	}
	switch {
	case paymentStatus == invoices.PaymentPaid && status != invoices.StatusPaid:
		status = invoices.StatusPaid
		if st.paidAt == nil {
			paidAt = time.Now().UTC()
		}
	case paymentStatus != invoices.PaymentPaid && status == invoices.StatusPaid:
		status = invoices.StatusSent
		paidAt = nil
	}
	_, err := tx.Exec(ctx, `UPDATE invoices SET paid_cents = $2, payment_status = $3, status = $4, paid_at = $5, updated_at = NOW() WHERE id = $1`,
		st.id, paidCents, paymentStatus, status, paidAt)
	return err
}

// Record inserts the payment after re-checking the cap under a row lock on
// the invoice, then rewrites the derived invoice state in the same
// transaction.
func (r *Repository) Record(ctx context.Context, payment Payment) (*Payment, *invoices.Invoice, error) {
	var recorded *Payment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		st, err := lockInvoice(ctx, tx, payment.BusinessID, payment.InvoiceID)
		if err != nil {
			return err
		}
		paid, err := sumPayments(ctx, tx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if paid+payment.AmountCents > st.totalCents {
			return fmt.Errorf("%w: %d cents exceeds the %d remaining", httpx.ErrOverLimit, payment.AmountCents, st.totalCents-paid)
		}
		row := tx.QueryRow(ctx, `INSERT INTO payments
(business_id, invoice_id, amount_cents, paid_at, method, reference, note, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
RETURNING `+paymentColumns,
			payment.BusinessID, payment.InvoiceID, payment.AmountCents, payment.PaidAt,
			payment.Method, payment.Reference, payment.Note, payment.CreatedBy)
		p, err := scanPayment(row)
		if err != nil {
			return err
		}
		if err := writeDerivedState(ctx, tx, st, paid+payment.AmountCents); err != nil {
			return err
		}
		recorded = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	invoice, err := r.getInvoice(ctx, payment.BusinessID, payment.InvoiceID)
	return recorded, invoice, err
}

// Delete removes a payment and recomputes the invoice's derived state in the
// same transaction.
func (r *Repository) Delete(ctx context.Context, businessID, invoiceID, paymentID int64) (*invoices.Invoice, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		st, err := lockInvoice(ctx, tx, businessID, invoiceID)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM payments WHERE business_id = $1 AND invoice_id = $2 AND id = $3`, businessID, invoiceID, paymentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: payment", httpx.ErrNotFound)
		}
		paid, err := sumPayments(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		return writeDerivedState(ctx, tx, st, paid)
	})
	if err != nil {
		return nil, err
	}
	return r.getInvoice(ctx, businessID, invoiceID)
}

// ListByInvoice returns the ledger entries of an invoice, oldest first.
func (r *Repository) ListByInvoice(ctx context.Context, businessID, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE business_id = $1 AND invoice_id = $2 ORDER BY paid_at, id`, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *Repository) getInvoice(ctx context.Context, businessID, invoiceID int64) (*invoices.Invoice, error) {
	return r.invoices.Get(ctx, businessID, invoiceID)
}
