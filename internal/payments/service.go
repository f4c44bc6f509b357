package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/money"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/shared"
)

// InvoicesPort is the invoice access the ledger needs.
type InvoicesPort interface {
	Get(ctx context.Context, businessID, id int64) (*invoices.Invoice, error)
}

// SummaryInvalidator bumps the cached billing summary of a project after a
// mutation.
type SummaryInvalidator interface {
	Bump(ctx context.Context, businessID, projectID int64) error
}

// AuditPort records billing mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service drives the payment ledger.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	invoices InvoicesPort
	cache    SummaryInvalidator
	audit    AuditPort
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds a Service instance. cache and audit may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, invoicesPort InvoicesPort, cache SummaryInvalidator, audit AuditPort) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		invoices: invoicesPort,
		cache:    cache,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Record adds a settlement entry. The repository re-validates the cap
// against already recorded payments inside the insert transaction, so two
// concurrent entries can never overshoot the invoice total together.
func (s *Service) Record(ctx context.Context, businessID, invoiceID int64, req RecordPaymentRequest) (*Payment, *invoices.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	invoice, err := s.invoices.Get(ctx, businessID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice.Status != invoices.StatusSent && invoice.Status != invoices.StatusPaid {
		return nil, nil, fmt.Errorf("%w: payments require a SENT invoice", httpx.ErrValidation)
	}
	if req.AmountCents > invoice.RemainingCents() {
		return nil, nil, fmt.Errorf("%w: %d cents exceeds the %d remaining", httpx.ErrOverLimit, req.AmountCents, invoice.RemainingCents())
	}

	payment := Payment{
		BusinessID:  businessID,
		InvoiceID:   invoiceID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Reference:   req.Reference,
		Note:        req.Note,
		PaidAt:      s.now().UTC(),
	}
	if req.PaidAt != nil {
		payment.PaidAt = req.PaidAt.UTC()
	}
	if payment.Reference == "" {
		payment.Reference = uuid.NewString()
	}
	if actor := shared.ActorFromContext(ctx); actor != nil {
		payment.CreatedBy = actor.UserID
	}

	recorded, updated, err := s.repo.Record(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	s.recordAudit(ctx, "payment.record", recorded.ID, map[string]any{
		"invoiceId": invoiceID,
		"amount":    money.Format(recorded.AmountCents, updated.Currency),
	})
	s.bump(ctx, businessID, updated.ProjectID)
	return recorded, updated, nil
}

// Delete removes a settlement entry and recomputes the invoice's derived
// state. An invoice that had been auto-marked PAID reverts to SENT when the
// remaining payments no longer cover the total.
func (s *Service) Delete(ctx context.Context, businessID, invoiceID, paymentID int64) (*invoices.Invoice, error) {
	updated, err := s.repo.Delete(ctx, businessID, invoiceID, paymentID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "payment.delete", paymentID, map[string]any{"invoiceId": invoiceID})
	s.bump(ctx, businessID, updated.ProjectID)
	return updated, nil
}

// ListByInvoice returns the ledger entries of an invoice.
func (s *Service) ListByInvoice(ctx context.Context, businessID, invoiceID int64) ([]Payment, error) {
	if _, err := s.invoices.Get(ctx, businessID, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListByInvoice(ctx, businessID, invoiceID)
}

// PrefillAmount computes the 25/50/100 percent shortcut over the remaining
// balance. The 100 case returns the exact remainder rather than a rounded
// percentage.
func (s *Service) PrefillAmount(ctx context.Context, businessID, invoiceID int64, fraction int) (*Prefill, error) {
	if fraction != 25 && fraction != 50 && fraction != 100 {
		return nil, fmt.Errorf("%w: fraction must be 25, 50 or 100", httpx.ErrValidation)
	}
	invoice, err := s.invoices.Get(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	remaining := invoice.RemainingCents()
	amount := remaining
	if fraction != 100 {
		amount = money.PercentOf(remaining, float64(fraction))
	}
	return &Prefill{Fraction: fraction, RemainingCents: remaining, AmountCents: amount}, nil
}

func (s *Service) bump(ctx context.Context, businessID, projectID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, businessID, projectID); err != nil {
		s.logger.Warn("billing summary invalidation failed", slog.Int64("projectId", projectID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, paymentID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor := shared.ActorFromContext(ctx); actor != nil {
		actorID = actor.UserID
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "payment", EntityID: strconv.FormatInt(paymentID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
