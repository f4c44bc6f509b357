package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/invoices"
)

type stubInvoiceReader struct {
	got struct{ businessID, id int64 }
	inv *invoices.Invoice
}

func (s *stubInvoiceReader) Get(_ context.Context, businessID, id int64) (*invoices.Invoice, error) {
	s.got.businessID, s.got.id = businessID, id
	return s.inv, nil
}

func TestRepositoryReloadsInvoiceThroughInjectedReader(t *testing.T) {
	reader := &stubInvoiceReader{inv: &invoices.Invoice{ID: 7, BusinessID: 1, Status: invoices.StatusSent}}
	repo := NewRepository(nil, reader)

	inv, err := repo.getInvoice(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Same(t, reader.inv, inv)
	require.Equal(t, int64(1), reader.got.businessID)
	require.Equal(t, int64(7), reader.got.id)
}
