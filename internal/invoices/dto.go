package invoices

import "time"

// CreateStagedRequest creates a partial invoice against the project's
// reference total. Value is a percent for PERCENT mode, a cent amount for
// AMOUNT mode, and ignored for FINAL mode.
type CreateStagedRequest struct {
	Mode  StagedMode `json:"mode" validate:"required,oneof=PERCENT AMOUNT FINAL"`
	Value float64    `json:"value" validate:"gte=0"`
	Note  string     `json:"note" validate:"omitempty,max=4000"`
}

// ItemPatch replaces one invoice item while the invoice is still DRAFT.
type ItemPatch struct {
	Label          string `json:"label" validate:"required,min=1,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	Quantity       int64  `json:"quantity" validate:"required,gte=1"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
	UnitLabel      string `json:"unitLabel" validate:"omitempty,max=40"`
}

// UpdateInvoiceRequest patches an invoice. Items require DRAFT; header
// fields require DRAFT or SENT; PaidAt is the admin-only payment-date
// correction and requires PAID status.
type UpdateInvoiceRequest struct {
	Note     *string      `json:"note,omitempty" validate:"omitempty,max=4000"`
	IssuedAt *time.Time   `json:"issuedAt,omitempty"`
	DueAt    *time.Time   `json:"dueAt,omitempty"`
	PaidAt   *time.Time   `json:"paidAt,omitempty"`
	Items    *[]ItemPatch `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// TransitionRequest moves an invoice to its next status. PAID is not
// accepted here; it derives from the payment ledger.
type TransitionRequest struct {
	Status Status `json:"status" validate:"required,oneof=SENT CANCELLED"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
