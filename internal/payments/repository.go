package payments

import (
	"context"

	"github.com/studiofief/lune/internal/invoices"
)

// RepositoryPort defines ledger persistence. Record re-validates the payment
// cap against the invoice total inside its transaction and rewrites the
// invoice's derived payment state; Delete does the inverse recomputation.
type RepositoryPort interface {
	Record(ctx context.Context, payment Payment) (*Payment, *invoices.Invoice, error)
	Delete(ctx context.Context, businessID, invoiceID, paymentID int64) (*invoices.Invoice, error)
	ListByInvoice(ctx context.Context, businessID, invoiceID int64) ([]Payment, error)
}
