package invoices

import (
	"context"
	"time"
)

// HeaderPatch carries the nullable header fields a repository update applies.
type HeaderPatch struct {
	Note     *string
	IssuedAt *time.Time
	DueAt    *time.Time
	PaidAt   *time.Time
}

// RepositoryPort defines invoice persistence. CreateFromQuote enforces the
// one-non-cancelled-invoice-per-quote rule and CreateStaged re-validates the
// invoiced sum against the reference total, both inside their transaction.
type RepositoryPort interface {
	CreateFromQuote(ctx context.Context, invoice Invoice) (*Invoice, error)
	CreateStaged(ctx context.Context, invoice Invoice, limitCents int64) (*Invoice, error)
	Get(ctx context.Context, businessID, id int64) (*Invoice, error)
	ListByProject(ctx context.Context, businessID, projectID int64) ([]Invoice, error)
	SumInvoiced(ctx context.Context, projectID int64) (int64, error)
	UpdateHeader(ctx context.Context, businessID, id int64, patch HeaderPatch) (*Invoice, error)
	ReplaceItems(ctx context.Context, businessID, id int64, items []Item, totalCents int64) (*Invoice, error)
	Transition(ctx context.Context, businessID, id int64, current, next Status, reason string) (*Invoice, error)
	Delete(ctx context.Context, businessID, id int64) error
	ListOverdue(ctx context.Context, now time.Time) ([]Invoice, error)
}
