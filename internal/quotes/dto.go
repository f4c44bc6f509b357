package quotes

import "time"

// CreateQuoteRequest creates a quote snapshot from the project's current
// pricing lines.
type CreateQuoteRequest struct {
	Note      string     `json:"note" validate:"omitempty,max=4000"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ItemPatch replaces one quote item while the quote is still DRAFT.
type ItemPatch struct {
	Label          string `json:"label" validate:"required,min=1,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	Quantity       int64  `json:"quantity" validate:"required,gte=1"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
	UnitLabel      string `json:"unitLabel" validate:"omitempty,max=40"`
}

// UpdateQuoteRequest patches a quote. Items require DRAFT status; header
// fields require DRAFT or SENT; SignedAt is the admin-only signature-date
// correction and requires SIGNED status.
type UpdateQuoteRequest struct {
	Note      *string      `json:"note,omitempty" validate:"omitempty,max=4000"`
	IssuedAt  *time.Time   `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	SignedAt  *time.Time   `json:"signedAt,omitempty"`
	Items     *[]ItemPatch `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// TransitionRequest moves a quote to its next status.
type TransitionRequest struct {
	Status   Status     `json:"status" validate:"required,oneof=SENT SIGNED CANCELLED EXPIRED"`
	Reason   string     `json:"reason" validate:"omitempty,max=500"`
	SignedAt *time.Time `json:"signedAt,omitempty"`
}

// SetReferenceRequest designates the billing reference quote of a project.
type SetReferenceRequest struct {
	QuoteID int64 `json:"quoteId" validate:"required,gt=0"`
}
