// Package clients manages the client and prospect directory of a business.
package clients

import "time"

// Kind distinguishes billed clients from prospects.
type Kind string

const (
	KindClient   Kind = "CLIENT"
	KindProspect Kind = "PROSPECT"
)

// Client is a customer record owned by a business.
type Client struct {
	ID        int64     `json:"id"`
	BusinessID int64    `json:"businessId"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
