package quotes

import (
	"context"
	"time"
)

// HeaderPatch carries the nullable header fields a repository update applies.
type HeaderPatch struct {
	Note      *string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	SignedAt  *time.Time
}

// Totals is the recomputed header money block written alongside item edits.
type Totals struct {
	TotalCents   int64
	DepositCents int64
	BalanceCents int64
	VATCents     int64
}

// RepositoryPort defines quote persistence. Create and ReplaceItems are
// multi-statement and must execute in one transaction.
type RepositoryPort interface {
	Create(ctx context.Context, quote Quote) (*Quote, error)
	Get(ctx context.Context, businessID, id int64) (*Quote, error)
	ListByProject(ctx context.Context, businessID, projectID int64) ([]Quote, error)
	UpdateHeader(ctx context.Context, businessID, id int64, patch HeaderPatch) (*Quote, error)
	ReplaceItems(ctx context.Context, businessID, id int64, items []Item, totals Totals) (*Quote, error)
	Transition(ctx context.Context, businessID, id int64, current, next Status, signedAt *time.Time, reason string) (*Quote, error)
	Delete(ctx context.Context, businessID, id int64) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]Quote, error)
}
