// Package billing is the read side of the lifecycle: it folds the reference
// quote or live pricing, the non-cancelled invoices and their payments into
// one project-level financial summary.
package billing

// Source says which total drives the summary.
type Source string

const (
	SourceQuote   Source = "QUOTE"
	SourcePricing Source = "PRICING"
)

// Summary is the derived financial position of a project. It is never
// persisted as its own row; reads recompute it from current state.
type Summary struct {
	Source                  Source  `json:"source"`
	ReferenceQuoteID        *int64  `json:"referenceQuoteId,omitempty"`
	Currency                string  `json:"currency"`
	TotalCents              int64   `json:"totalCents"`
	MissingPrice            bool    `json:"missingPrice"`
	DepositPercent          float64 `json:"depositPercent"`
	DepositCents            int64   `json:"depositCents"`
	BalanceCents            int64   `json:"balanceCents"`
	VATEnabled              bool    `json:"vatEnabled"`
	VATRatePercent          float64 `json:"vatRatePercent"`
	VATCents                int64   `json:"vatCents"`
	TotalWithVATCents       int64   `json:"totalWithVatCents"`
	AlreadyInvoicedCents    int64   `json:"alreadyInvoicedCents"`
	AlreadyPaidCents        int64   `json:"alreadyPaidCents"`
	RemainingToCollectCents int64   `json:"remainingToCollectCents"`
	RemainingToInvoiceCents int64   `json:"remainingToInvoiceCents"`
}
