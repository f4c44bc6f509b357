// Package businesses holds tenant records, billing settings and memberships.
package businesses

import (
	"time"

	"github.com/studiofief/lune/internal/shared"
)

// Business is a tenant. Its settings drive the billing core: currency for
// every document, VAT on top when enabled, and the default deposit percent
// applied at quote issue time.
type Business struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Currency              string    `json:"currency"`
	VATEnabled            bool      `json:"vatEnabled"`
	VATRatePercent        float64   `json:"vatRatePercent"`
	DefaultDepositPercent float64   `json:"defaultDepositPercent"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Membership maps a user to a role inside a business.
type Membership struct {
	BusinessID int64       `json:"businessId"`
	UserID     int64       `json:"userId"`
	Role       shared.Role `json:"role"`
	CreatedAt  time.Time   `json:"createdAt"`
}
