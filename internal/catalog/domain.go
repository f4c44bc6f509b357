// Package catalog manages the reusable service offerings of a business.
package catalog

import "time"

// Service is a catalog entry a project line can reference. Both prices are
// optional: a line missing every price source blocks quote creation until an
// operator resolves it.
type Service struct {
	ID           int64     `json:"id"`
	BusinessID   int64     `json:"businessId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   *int64    `json:"priceCents,omitempty"`
	DayRateCents *int64    `json:"dayRateCents,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
