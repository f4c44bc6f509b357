// Package invoices implements the invoice lifecycle: full invoices derived
// from a quote and staged partial invoices against a project's reference
// total.
package invoices

import "time"

// Status of an invoice. PAID is never set by hand; it derives from the
// payment ledger covering the total.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus is derived from the sum of recorded payments versus total.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// StagedMode selects how a staged invoice amount is computed.
type StagedMode string

const (
	StagedPercent StagedMode = "PERCENT"
	StagedAmount  StagedMode = "AMOUNT"
	StagedFinal   StagedMode = "FINAL"
)

// CanTransition reports whether current may move to next by hand.
func CanTransition(current, next Status) bool {
	switch next {
	case StatusSent:
		return current == StatusDraft
	case StatusCancelled:
		return current == StatusDraft || current == StatusSent
	default:
		return false
	}
}

// Invoice bills part or all of a project. QuoteID links back to the source
// quote for full invoices and enforces the one-invoice-per-quote rule.
type Invoice struct {
	ID            int64         `json:"id"`
	BusinessID    int64         `json:"businessId"`
	ProjectID     int64         `json:"projectId"`
	QuoteID       *int64        `json:"quoteId,omitempty"`
	Number        string        `json:"number"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Currency      string        `json:"currency"`
	TotalCents    int64         `json:"totalCents"`
	PaidCents     int64         `json:"paidCents"`
	Note          string        `json:"note,omitempty"`
	IssuedAt      *time.Time    `json:"issuedAt,omitempty"`
	DueAt         *time.Time    `json:"dueAt,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	CancelReason  string        `json:"cancelReason,omitempty"`
	Items         []Item        `json:"items"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Item is one denormalized invoice line.
type Item struct {
	ID             int64  `json:"id"`
	InvoiceID      int64  `json:"invoiceId"`
	Label          string `json:"label"`
	Description    string `json:"description,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
	UnitLabel      string `json:"unitLabel,omitempty"`
	Position       int    `json:"position"`
}

// RemainingCents is the unpaid part of the invoice total.
func (inv *Invoice) RemainingCents() int64 {
	remaining := inv.TotalCents - inv.PaidCents
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Deletable reports whether the invoice may be removed.
func (inv *Invoice) Deletable() bool {
	return inv.Status == StatusDraft || inv.Status == StatusCancelled
}
