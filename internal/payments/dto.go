package payments

import "time"

// RecordPaymentRequest records a settlement against an invoice.
type RecordPaymentRequest struct {
	AmountCents int64      `json:"amountCents" validate:"required,gt=0"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	Method      Method     `json:"method" validate:"required,oneof=WIRE CARD CHECK CASH OTHER"`
	Reference   string     `json:"reference" validate:"omitempty,max=120"`
	Note        string     `json:"note" validate:"omitempty,max=2000"`
}

// Prefill is the convenience response for the 25/50/100 percent shortcuts.
type Prefill struct {
	Fraction       int   `json:"fraction"`
	RemainingCents int64 `json:"remainingCents"`
	AmountCents    int64 `json:"amountCents"`
}
