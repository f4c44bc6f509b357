package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/money"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
	"github.com/studiofief/lune/internal/shared"
)

// DefaultDueDays is applied when an invoice is sent without an explicit due
// date.
const DefaultDueDays = 30

// QuotesPort is the quote access invoice creation needs.
type QuotesPort interface {
	Get(ctx context.Context, businessID, id int64) (*quotes.Quote, error)
}

// ProjectsPort resolves the live pricing fallback for staged invoicing.
type ProjectsPort interface {
	Get(ctx context.Context, businessID, projectID int64) (*projects.Project, error)
	ResolvedPricing(ctx context.Context, businessID, projectID int64) ([]projects.PricedLine, error)
}

// BusinessPort exposes the tenant settings staged invoices fall back to.
type BusinessPort interface {
	Get(ctx context.Context, id int64) (*businesses.Business, error)
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

// Service drives the invoice lifecycle.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	quotes   QuotesPort
	projects ProjectsPort
	business BusinessPort
	cache    SummaryInvalidator
	audit    AuditPort
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds a Service instance. cache and audit may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, quotesPort QuotesPort, projectsPort ProjectsPort, businessPort BusinessPort, cache SummaryInvalidator, audit AuditPort) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		quotes:   quotesPort,
		projects: projectsPort,
		business: businessPort,
		cache:    cache,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateFromQuote copies a SENT or SIGNED quote verbatim into a DRAFT
// invoice. A quote can back at most one non-cancelled invoice; the
// repository enforces that inside the insert transaction.
func (s *Service) CreateFromQuote(ctx context.Context, businessID, quoteID int64) (*Invoice, error) {
	quote, err := s.quotes.Get(ctx, businessID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != quotes.StatusSent && quote.Status != quotes.StatusSigned {
		return nil, fmt.Errorf("%w: only a SENT or SIGNED quote can be invoiced", httpx.ErrValidation)
	}

	invoice := Invoice{
		BusinessID:    businessID,
		ProjectID:     quote.ProjectID,
		QuoteID:       &quote.ID,
		Status:        StatusDraft,
		PaymentStatus: PaymentUnpaid,
		Currency:      quote.Currency,
		TotalCents:    quote.TotalCents,
		Note:          quote.Note,
	}
	for _, item := range quote.Items {
		invoice.Items = append(invoice.Items, Item{
			Label:          item.Label,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
			UnitLabel:      item.UnitLabel,
			Position:       item.Position,
		})
	}

	created, err := s.repo.CreateFromQuote(ctx, invoice)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "invoice.create_from_quote", created.ID, map[string]any{"quoteId": quote.ID})
	s.bump(ctx, businessID, created.ProjectID)
	return created, nil
}

// CreateStaged creates a partial invoice. The reference total is the
// designated reference quote's total when one exists, the live pricing total
// otherwise. The computed amount must fit inside what remains to invoice.
func (s *Service) CreateStaged(ctx context.Context, businessID, projectID int64, req CreateStagedRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	project, err := s.projects.Get(ctx, businessID, projectID)
	if err != nil {
		return nil, err
	}
	referenceTotal, currency, err := s.referenceTotal(ctx, businessID, project)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.repo.SumInvoiced(ctx, projectID)
	if err != nil {
		return nil, err
	}
	remaining := referenceTotal - invoiced
	if remaining < 0 {
		remaining = 0
	}

	var amount int64
	var label string
	switch req.Mode {
	case StagedPercent:
		if req.Value <= 0 || req.Value > 100 {
			return nil, fmt.Errorf("%w: percent must be in (0,100]", httpx.ErrValidation)
		}
		amount = money.PercentOf(referenceTotal, req.Value)
		label = fmt.Sprintf("Acompte %s%%", strconv.FormatFloat(req.Value, 'f', -1, 64))
	case StagedAmount:
		if req.Value <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
		}
		amount = money.RoundHalfUp(req.Value)
		label = "Facture intermédiaire"
	case StagedFinal:
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: nothing left to invoice", httpx.ErrOverLimit)
		}
		amount = remaining
		label = "Solde"
	}
	if amount > remaining {
		return nil, fmt.Errorf("%w: %d cents exceeds the %d remaining to invoice", httpx.ErrOverLimit, amount, remaining)
	}

	invoice := Invoice{
		BusinessID:    businessID,
		ProjectID:     projectID,
		Status:        StatusDraft,
		PaymentStatus: PaymentUnpaid,
		Currency:      currency,
		TotalCents:    amount,
		Note:          req.Note,
		Items: []Item{{
			Label:          label,
			Quantity:       1,
			UnitPriceCents: amount,
			TotalCents:     amount,
			Position:       1,
		}},
	}
	created, err := s.repo.CreateStaged(ctx, invoice, referenceTotal)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "invoice.create_staged", created.ID, map[string]any{"mode": req.Mode, "totalCents": amount})
	s.bump(ctx, businessID, projectID)
	return created, nil
}

func (s *Service) referenceTotal(ctx context.Context, businessID int64, project *projects.Project) (int64, string, error) {
	if project.ReferenceQuoteID != nil {
		quote, err := s.quotes.Get(ctx, businessID, *project.ReferenceQuoteID)
		if err != nil {
			return 0, "", err
		}
		return quote.TotalCents, quote.Currency, nil
	}
	priced, err := s.projects.ResolvedPricing(ctx, businessID, project.ID)
	if err != nil {
		return 0, "", err
	}
	total, _ := projects.PricingTotal(priced)
	biz, err := s.business.Get(ctx, businessID)
	if err != nil {
		return 0, "", err
	}
	return total, biz.Currency, nil
}

// Get returns one invoice scoped to the business.
func (s *Service) Get(ctx context.Context, businessID, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, businessID, id)
}

// ListByProject returns the invoices of a project, newest first.
func (s *Service) ListByProject(ctx context.Context, businessID, projectID int64) ([]Invoice, error) {
	if _, err := s.projects.Get(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, businessID, projectID)
}

// Update patches an invoice under the lock rules: items only in DRAFT,
// header fields in DRAFT or SENT, payment-date correction only once PAID.
func (s *Service) Update(ctx context.Context, businessID, id int64, patch UpdateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	invoice, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if patch.Items != nil {
		if invoice.Status != StatusDraft {
			return nil, fmt.Errorf("%w: items are frozen once the invoice leaves DRAFT", httpx.ErrLocked)
		}
		items := make([]Item, 0, len(*patch.Items))
		var total int64
		for i, p := range *patch.Items {
			lineTotal := p.UnitPriceCents * p.Quantity
			total += lineTotal
			items = append(items, Item{
				InvoiceID:      invoice.ID,
				Label:          p.Label,
				Description:    p.Description,
				Quantity:       p.Quantity,
				UnitPriceCents: p.UnitPriceCents,
				TotalCents:     lineTotal,
				UnitLabel:      p.UnitLabel,
				Position:       i + 1,
			})
		}
		updated, err := s.repo.ReplaceItems(ctx, businessID, id, items, total)
		if err != nil {
			return nil, err
		}
		s.bump(ctx, businessID, invoice.ProjectID)
		return updated, nil
	}

	if patch.PaidAt != nil {
		if invoice.Status != StatusPaid {
			return nil, fmt.Errorf("%w: payment date exists only on PAID invoices", httpx.ErrValidation)
		}
		return s.repo.UpdateHeader(ctx, businessID, id, HeaderPatch{PaidAt: patch.PaidAt})
	}

	if invoice.Status != StatusDraft && invoice.Status != StatusSent {
		return nil, fmt.Errorf("%w: invoice %s is no longer editable", httpx.ErrLocked, invoice.Status)
	}
	return s.repo.UpdateHeader(ctx, businessID, id, HeaderPatch{
		Note:     patch.Note,
		IssuedAt: patch.IssuedAt,
		DueAt:    patch.DueAt,
	})
}

// Transition moves an invoice by hand: DRAFT to SENT, or cancellation. PAID
// is reached only through the payment ledger.
func (s *Service) Transition(ctx context.Context, businessID, id int64, req TransitionRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	invoice, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(invoice.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move invoice from %s to %s", httpx.ErrValidation, invoice.Status, req.Status)
	}

	updated, err := s.repo.Transition(ctx, businessID, id, invoice.Status, req.Status, req.Reason)
	if err != nil {
		return nil, err
	}

	if req.Status == StatusSent {
		patch := HeaderPatch{}
		if updated.IssuedAt == nil {
			now := s.now().UTC()
			patch.IssuedAt = &now
		}
		if updated.DueAt == nil {
			due := s.now().UTC().AddDate(0, 0, DefaultDueDays)
			patch.DueAt = &due
		}
		if patch.IssuedAt != nil || patch.DueAt != nil {
			if updated, err = s.repo.UpdateHeader(ctx, businessID, id, patch); err != nil {
				return nil, err
			}
		}
	}

	s.recordAudit(ctx, "invoice.transition", id, map[string]any{"from": invoice.Status, "to": req.Status})
	s.bump(ctx, businessID, invoice.ProjectID)
	return updated, nil
}

// Delete removes an invoice that never went out.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	invoice, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return err
	}
	if !invoice.Deletable() {
		return fmt.Errorf("%w: invoice %s cannot be deleted", httpx.ErrLocked, invoice.Status)
	}
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "invoice.delete", id, nil)
	s.bump(ctx, businessID, invoice.ProjectID)
	return nil
}

// ListOverdue returns SENT invoices past their due date. Called from the
// background scan.
func (s *Service) ListOverdue(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListOverdue(ctx, s.now().UTC())
}

func (s *Service) bump(ctx context.Context, businessID, projectID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, businessID, projectID); err != nil {
		s.logger.Warn("billing summary invalidation failed", slog.Int64("projectId", projectID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, invoiceID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor := shared.ActorFromContext(ctx); actor != nil {
		actorID = actor.UserID
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "invoice", EntityID: strconv.FormatInt(invoiceID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
