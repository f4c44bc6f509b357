// Package payments is the settlement ledger behind invoices. Recording and
// deleting entries re-derives the owning invoice's payment status.
package payments

import (
	"time"

	"github.com/studiofief/lune/internal/invoices"
)

// Method of settlement.
type Method string

const (
	MethodWire  Method = "WIRE"
	MethodCard  Method = "CARD"
	MethodCheck Method = "CHECK"
	MethodCash  Method = "CASH"
	MethodOther Method = "OTHER"
)

// Payment is one settlement entry against an invoice.
type Payment struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"businessId"`
	InvoiceID   int64     `json:"invoiceId"`
	AmountCents int64     `json:"amountCents"`
	PaidAt      time.Time `json:"paidAt"`
	Method      Method    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DerivePaymentStatus maps the paid sum against the total.
func DerivePaymentStatus(paidCents, totalCents int64) invoices.PaymentStatus {
	switch {
	case paidCents <= 0:
		return invoices.PaymentUnpaid
	case paidCents >= totalCents:
		return invoices.PaymentPaid
	default:
		return invoices.PaymentPartial
	}
}
