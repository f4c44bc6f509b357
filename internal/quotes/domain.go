// Package quotes implements the quote lifecycle: snapshotting priced project
// lines into an immutable document and driving its status transitions.
package quotes

import "time"

// Status of a quote.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusSigned    Status = "SIGNED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// transitions is the allowed-state table keyed by target status.
var transitions = map[Status][]Status{
	StatusSent:      {StatusDraft},
	StatusSigned:    {StatusSent},
	StatusExpired:   {StatusSent},
	StatusCancelled: {StatusDraft, StatusSent, StatusSigned},
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next Status) bool {
	for _, from := range transitions[next] {
		if from == current {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// Quote is a priced snapshot of a project at a point in time. Items and
// totals are frozen once the quote leaves DRAFT; header dates and the note
// stay editable through SENT.
type Quote struct {
	ID             int64      `json:"id"`
	BusinessID     int64      `json:"businessId"`
	ProjectID      int64      `json:"projectId"`
	Number         string     `json:"number"`
	Status         Status     `json:"status"`
	Currency       string     `json:"currency"`
	TotalCents     int64      `json:"totalCents"`
	DepositPercent float64    `json:"depositPercent"`
	DepositCents   int64      `json:"depositCents"`
	BalanceCents   int64      `json:"balanceCents"`
	VATRatePercent float64    `json:"vatRatePercent"`
	VATCents       int64      `json:"vatCents"`
	Note           string     `json:"note,omitempty"`
	IssuedAt       *time.Time `json:"issuedAt,omitempty"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	CancelReason   string     `json:"cancelReason,omitempty"`
	Items          []Item     `json:"items"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Item is one denormalized quote line. It never points back at the live
// pricing line so later catalog edits cannot rewrite history.
type Item struct {
	ID             int64  `json:"id"`
	QuoteID        int64  `json:"quoteId"`
	Label          string `json:"label"`
	Description    string `json:"description,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
	UnitLabel      string `json:"unitLabel,omitempty"`
	Position       int    `json:"position"`
}

// Deletable reports whether the quote may be removed: never-signed and in a
// non-binding state.
func (q *Quote) Deletable() bool {
	if q.SignedAt != nil {
		return false
	}
	return q.Status == StatusDraft || q.Status == StatusCancelled || q.Status == StatusExpired
}
