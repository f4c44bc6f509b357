package payments

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/platform/httpx"
)

// memLedger backs both the ledger and the invoice it settles, mirroring the
// single-transaction recompute the SQL repository performs.
type memLedger struct {
	nextID   int64
	invoice  *invoices.Invoice
	payments map[int64]*Payment
}

func newMemLedger(invoice *invoices.Invoice) *memLedger {
	return &memLedger{invoice: invoice, payments: map[int64]*Payment{}}
}

func (m *memLedger) paidSum() int64 {
	var sum int64
	for _, p := range m.payments {
		sum += p.AmountCents
	}
	return sum
}

func (m *memLedger) recompute() {
	paid := m.paidSum()
	m.invoice.PaidCents = paid
	m.invoice.PaymentStatus = DerivePaymentStatus(paid, m.invoice.TotalCents)
	switch {
	case m.invoice.PaymentStatus == invoices.PaymentPaid && m.invoice.Status != invoices.StatusPaid:
		m.invoice.Status = invoices.StatusPaid
		now := time.Now()
		m.invoice.PaidAt = &now
	case m.invoice.PaymentStatus != invoices.PaymentPaid && m.invoice.Status == invoices.StatusPaid:
		m.invoice.Status = invoices.StatusSent
		m.invoice.PaidAt = nil
	}
}

func (m *memLedger) Record(_ context.Context, payment Payment) (*Payment, *invoices.Invoice, error) {
	if m.invoice == nil || m.invoice.ID != payment.InvoiceID {
		return nil, nil, httpx.ErrNotFound
	}
	if m.paidSum()+payment.AmountCents > m.invoice.TotalCents {
		return nil, nil, httpx.ErrOverLimit
	}
	m.nextID++
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	stored := payment
	m.payments[payment.ID] = &stored
	m.recompute()
	out := payment
	inv := *m.invoice
	return &out, &inv, nil
}

func (m *memLedger) Delete(_ context.Context, businessID, invoiceID, paymentID int64) (*invoices.Invoice, error) {
	if m.invoice == nil || m.invoice.ID != invoiceID || m.invoice.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	if _, ok := m.payments[paymentID]; !ok {
		return nil, httpx.ErrNotFound
	}
	delete(m.payments, paymentID)
	m.recompute()
	inv := *m.invoice
	return &inv, nil
}

func (m *memLedger) ListByInvoice(_ context.Context, _, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memInvoices struct{ ledger *memLedger }

func (m *memInvoices) Get(_ context.Context, businessID, id int64) (*invoices.Invoice, error) {
	if m.ledger.invoice == nil || m.ledger.invoice.ID != id || m.ledger.invoice.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	inv := *m.ledger.invoice
	return &inv, nil
}

func newLedgerService(t *testing.T, status invoices.Status, totalCents int64) (*Service, *memLedger) {
	t.Helper()
	ledger := newMemLedger(&invoices.Invoice{
		ID: 7, BusinessID: 1, ProjectID: 10, Status: status,
		PaymentStatus: invoices.PaymentUnpaid, Currency: "EUR", TotalCents: totalCents,
	})
	svc := NewService(slog.Default(), ledger, &memInvoices{ledger: ledger}, nil, nil)
	return svc, ledger
}

func TestRecordPartialThenFull(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)

	_, inv, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 20000, Method: MethodWire})
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPartial, inv.PaymentStatus)
	require.Equal(t, int64(30000), inv.RemainingCents())
	require.Equal(t, invoices.StatusSent, inv.Status)

	_, inv, err = svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 30000, Method: MethodCard})
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPaid, inv.PaymentStatus)
	require.Equal(t, invoices.StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
	require.Zero(t, inv.RemainingCents())
}

func TestRecordOverLimitRejected(t *testing.T) {
	svc, ledger := newLedgerService(t, invoices.StatusSent, 50000)

	_, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 20000, Method: MethodWire})
	require.NoError(t, err)

	// 30000 remaining, 40000 attempted
	_, _, err = svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 40000, Method: MethodWire})
	require.ErrorIs(t, err, httpx.ErrOverLimit)
	require.Len(t, ledger.payments, 1)
}

func TestRecordRequiresSentInvoice(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusDraft, 50000)
	_, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 1000, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRecordRequiresPositiveAmount(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)
	_, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 0, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, _, err = svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: -500, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRecordGeneratesReference(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)
	payment, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 1000, Method: MethodWire})
	require.NoError(t, err)
	require.NotEmpty(t, payment.Reference)

	payment, _, err = svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 1000, Method: MethodWire, Reference: "VIR-42"})
	require.NoError(t, err)
	require.Equal(t, "VIR-42", payment.Reference)
}

func TestDeleteRevertsPaidToSent(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)

	payment, inv, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 50000, Method: MethodWire})
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, inv.Status)

	inv, err = svc.Delete(context.Background(), 1, 7, payment.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusSent, inv.Status)
	require.Equal(t, invoices.PaymentUnpaid, inv.PaymentStatus)
	require.Nil(t, inv.PaidAt)
	require.Equal(t, int64(50000), inv.RemainingCents())
}

func TestDeleteKeepsPartial(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)

	first, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 20000, Method: MethodWire})
	require.NoError(t, err)
	_, _, err = svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 10000, Method: MethodCheck})
	require.NoError(t, err)

	inv, err := svc.Delete(context.Background(), 1, 7, first.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPartial, inv.PaymentStatus)
	require.Equal(t, int64(10000), inv.PaidCents)
}

func TestPrefillAmounts(t *testing.T) {
	svc, _ := newLedgerService(t, invoices.StatusSent, 50000)
	_, _, err := svc.Record(context.Background(), 1, 7, RecordPaymentRequest{AmountCents: 10000, Method: MethodWire})
	require.NoError(t, err)

	quarter, err := svc.PrefillAmount(context.Background(), 1, 7, 25)
	require.NoError(t, err)
	require.Equal(t, int64(40000), quarter.RemainingCents)
	require.Equal(t, int64(10000), quarter.AmountCents)

	full, err := svc.PrefillAmount(context.Background(), 1, 7, 100)
	require.NoError(t, err)
	require.Equal(t, int64(40000), full.AmountCents)

	_, err = svc.PrefillAmount(context.Background(), 1, 7, 33)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDerivePaymentStatus(t *testing.T) {
	require.Equal(t, invoices.PaymentUnpaid, DerivePaymentStatus(0, 1000))
	require.Equal(t, invoices.PaymentPartial, DerivePaymentStatus(500, 1000))
	require.Equal(t, invoices.PaymentPaid, DerivePaymentStatus(1000, 1000))
	require.Equal(t, invoices.PaymentPaid, DerivePaymentStatus(1500, 1000))
}
