// Package projects manages projects and their priced service lines.
package projects

import "time"

// Status of a project.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPaused   Status = "PAUSED"
	StatusArchived Status = "ARCHIVED"
)

// DiscountType selects how a line discount is interpreted.
type DiscountType string

const (
	DiscountNone    DiscountType = "NONE"
	DiscountPercent DiscountType = "PERCENT"
	DiscountAmount  DiscountType = "AMOUNT"
)

// BillingUnit distinguishes one-off lines from recurring monthly ones.
type BillingUnit string

const (
	BillingOneOff  BillingUnit = "ONE_OFF"
	BillingMonthly BillingUnit = "MONTHLY"
)

// DefaultMonthlyUnitLabel is applied when a MONTHLY line has no unit label.
const DefaultMonthlyUnitLabel = "/mois"

// Project is a client engagement. ReferenceQuoteID designates the SIGNED
// quote whose totals drive invoicing; nil means live pricing is authoritative.
type Project struct {
	ID               int64     `json:"id"`
	BusinessID       int64     `json:"businessId"`
	ClientID         int64     `json:"clientId"`
	Name             string    `json:"name"`
	Status           Status    `json:"status"`
	Notes            string    `json:"notes,omitempty"`
	ReferenceQuoteID *int64    `json:"referenceQuoteId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ServiceLine is a priced line attached to a project. PriceCents overrides
// the catalog price when set. DiscountValue is a percent in [0,100] or a
// non-negative cent amount depending on DiscountType.
type ServiceLine struct {
	ID               int64        `json:"id"`
	ProjectID        int64        `json:"projectId"`
	CatalogServiceID int64        `json:"catalogServiceId"`
	Quantity         int64        `json:"quantity"`
	PriceCents       *int64       `json:"priceCents,omitempty"`
	DiscountType     DiscountType `json:"discountType"`
	DiscountValue    float64      `json:"discountValue"`
	BillingUnit      BillingUnit  `json:"billingUnit"`
	UnitLabel        string       `json:"unitLabel,omitempty"`
	TitleOverride    string       `json:"titleOverride,omitempty"`
	Description      string       `json:"description,omitempty"`
	Position         int          `json:"position"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}
