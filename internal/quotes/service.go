package quotes

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
	"github.com/studiofief/lune/internal/shared"
)

// DefaultValidityDays is applied when a quote is sent without an explicit
// expiry date.
const DefaultValidityDays = 30

// ProjectsPort is the project access the quote lifecycle needs.
type ProjectsPort interface {
	Get(ctx context.Context, businessID, projectID int64) (*projects.Project, error)
	ResolvedPricing(ctx context.Context, businessID, projectID int64) ([]projects.PricedLine, error)
	SetReferenceQuote(ctx context.Context, businessID, projectID int64, quoteID *int64) error
}

// BusinessPort exposes the tenant settings snapshot into quote headers.
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

// Service drives the quote lifecycle.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	projects ProjectsPort
	business BusinessPort
	cache    SummaryInvalidator
	audit    AuditPort
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds a Service instance. cache and audit may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, projectsPort ProjectsPort, businessPort BusinessPort, cache SummaryInvalidator, audit AuditPort) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		projects: projectsPort,
		business: businessPort,
		cache:    cache,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Create snapshots the project's resolved pricing lines into a new DRAFT
// quote. It fails without writing anything when the project has no lines or
// any line is missing a price.
func (s *Service) Create(ctx context.Context, businessID, projectID int64, req CreateQuoteRequest) (*Quote, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if _, err := s.projects.Get(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	priced, err := s.projects.ResolvedPricing(ctx, businessID, projectID)
	if err != nil {
		return nil, err
	}
	if len(priced) == 0 {
		return nil, fmt.Errorf("%w: project has no pricing lines", httpx.ErrValidation)
	}
	for _, line := range priced {
		if line.MissingPrice {
			return nil, fmt.Errorf("%w: line %q has no resolvable price", httpx.ErrValidation, line.Label)
		}
	}
	biz, err := s.business.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}

	quote := Quote{
		BusinessID:     businessID,
		ProjectID:      projectID,
		Status:         StatusDraft,
		Currency:       biz.Currency,
		DepositPercent: money.ClampPercent(biz.DefaultDepositPercent),
		Note:           req.Note,
		ExpiresAt:      req.ExpiresAt,
	}
	if biz.VATEnabled {
		quote.VATRatePercent = money.ClampPercent(biz.VATRatePercent)
	}
	for i, line := range priced {
		quote.TotalCents += line.TotalCents
		quote.Items = append(quote.Items, Item{
			Label:          line.Label,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPriceCents: line.FinalUnitCents,
			TotalCents:     line.TotalCents,
			UnitLabel:      line.UnitLabel,
			Position:       i + 1,
		})
	}
	quote.DepositCents = money.PercentOf(quote.TotalCents, quote.DepositPercent)
	quote.BalanceCents = quote.TotalCents - quote.DepositCents
	quote.VATCents = money.PercentOf(quote.TotalCents, quote.VATRatePercent)

	created, err := s.repo.Create(ctx, quote)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "quote.create", created.ID, map[string]any{"totalCents": created.TotalCents})
	s.bump(ctx, businessID, projectID)
	return created, nil
}

// Get returns one quote scoped to the business.
func (s *Service) Get(ctx context.Context, businessID, id int64) (*Quote, error) {
	return s.repo.Get(ctx, businessID, id)
}

// ListByProject returns the quotes of a project, newest first.
func (s *Service) ListByProject(ctx context.Context, businessID, projectID int64) ([]Quote, error) {
	if _, err := s.projects.Get(ctx, businessID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, businessID, projectID)
}

// Update patches a quote under the lock rules: items only in DRAFT, header
// fields in DRAFT or SENT, signature-date correction only once SIGNED.
func (s *Service) Update(ctx context.Context, businessID, id int64, patch UpdateQuoteRequest) (*Quote, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	quote, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if patch.Items != nil {
		if quote.Status != StatusDraft {
			return nil, fmt.Errorf("%w: items are frozen once the quote leaves DRAFT", httpx.ErrLocked)
		}
		return s.replaceItems(ctx, quote, *patch.Items)
	}

	if patch.SignedAt != nil {
		if quote.Status != StatusSigned {
			return nil, fmt.Errorf("%w: signature date exists only on SIGNED quotes", httpx.ErrValidation)
		}
		return s.repo.UpdateHeader(ctx, businessID, id, HeaderPatch{SignedAt: patch.SignedAt})
	}

	if quote.Status != StatusDraft && quote.Status != StatusSent {
		return nil, fmt.Errorf("%w: quote %s is no longer editable", httpx.ErrLocked, quote.Status)
	}
	return s.repo.UpdateHeader(ctx, businessID, id, HeaderPatch{
		Note:      patch.Note,
		IssuedAt:  patch.IssuedAt,
		ExpiresAt: patch.ExpiresAt,
	})
}

func (s *Service) replaceItems(ctx context.Context, quote *Quote, patches []ItemPatch) (*Quote, error) {
	items := make([]Item, 0, len(patches))
	var total int64
	for i, p := range patches {
		lineTotal := p.UnitPriceCents * p.Quantity
		total += lineTotal
		items = append(items, Item{
			QuoteID:        quote.ID,
			Label:          p.Label,
			Description:    p.Description,
			Quantity:       p.Quantity,
			UnitPriceCents: p.UnitPriceCents,
			TotalCents:     lineTotal,
			UnitLabel:      p.UnitLabel,
			Position:       i + 1,
		})
	}
	totals := Totals{
		TotalCents:   total,
		DepositCents: money.PercentOf(total, quote.DepositPercent),
		VATCents:     money.PercentOf(total, quote.VATRatePercent),
	}
	totals.BalanceCents = totals.TotalCents - totals.DepositCents

	updated, err := s.repo.ReplaceItems(ctx, quote.BusinessID, quote.ID, items, totals)
	if err != nil {
		return nil, err
	}
	s.bump(ctx, quote.BusinessID, quote.ProjectID)
	return updated, nil
}

// Transition moves a quote along the lifecycle. The repository applies the
// change with the expected current status in the WHERE clause so a lost race
// surfaces as a conflict instead of a double transition.
func (s *Service) Transition(ctx context.Context, businessID, id int64, req TransitionRequest) (*Quote, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	quote, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(quote.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move quote from %s to %s", httpx.ErrValidation, quote.Status, req.Status)
	}
	if req.Status == StatusCancelled && req.Reason == "" {
		return nil, fmt.Errorf("%w: cancelling a quote requires a reason", httpx.ErrValidation)
	}

	var signedAt *time.Time
	if req.Status == StatusSigned {
		at := s.now().UTC()
		if req.SignedAt != nil {
			at = req.SignedAt.UTC()
		}
		signedAt = &at
	}

	updated, err := s.repo.Transition(ctx, businessID, id, quote.Status, req.Status, signedAt, req.Reason)
	if err != nil {
		return nil, err
	}

	if req.Status == StatusSent {
		patch := HeaderPatch{}
		if updated.IssuedAt == nil {
			now := s.now().UTC()
			patch.IssuedAt = &now
		}
		if updated.ExpiresAt == nil {
			expires := s.now().UTC().AddDate(0, 0, DefaultValidityDays)
			patch.ExpiresAt = &expires
		}
		if patch.IssuedAt != nil || patch.ExpiresAt != nil {
			if updated, err = s.repo.UpdateHeader(ctx, businessID, id, patch); err != nil {
				return nil, err
			}
		}
	}

	s.recordAudit(ctx, "quote.transition", id, map[string]any{"from": quote.Status, "to": req.Status})
	s.bump(ctx, businessID, quote.ProjectID)
	return updated, nil
}

// SetAsReference designates a SIGNED quote as the project's billing
// reference.
func (s *Service) SetAsReference(ctx context.Context, businessID, projectID int64, req SetReferenceRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	quote, err := s.repo.Get(ctx, businessID, req.QuoteID)
	if err != nil {
		return err
	}
	if quote.ProjectID != projectID {
		return fmt.Errorf("%w: quote does not belong to this project", httpx.ErrValidation)
	}
	if quote.Status != StatusSigned {
		return fmt.Errorf("%w: only a SIGNED quote can become the billing reference", httpx.ErrValidation)
	}
	if err := s.projects.SetReferenceQuote(ctx, businessID, projectID, &quote.ID); err != nil {
		return err
	}
	s.recordAudit(ctx, "quote.set_reference", quote.ID, nil)
	s.bump(ctx, businessID, projectID)
	return nil
}

// Delete removes a quote that never reached a binding state.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	quote, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return err
	}
	if !quote.Deletable() {
		return fmt.Errorf("%w: quote %s cannot be deleted", httpx.ErrLocked, quote.Status)
	}
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "quote.delete", id, nil)
	s.bump(ctx, businessID, quote.ProjectID)
	return nil
}

// ExpireOverdue flips SENT quotes past their expiry date to EXPIRED and
// returns the affected quotes. Called from the background scan.
func (s *Service) ExpireOverdue(ctx context.Context) ([]Quote, error) {
	expired, err := s.repo.ExpireOverdue(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, q := range expired {
		s.bump(ctx, q.BusinessID, q.ProjectID)
	}
	return expired, nil
}

func (s *Service) bump(ctx context.Context, businessID, projectID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, businessID, projectID); err != nil {
		s.logger.Warn("billing summary invalidation failed", slog.Int64("projectId", projectID), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, quoteID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor := shared.ActorFromContext(ctx); actor != nil {
		actorID = actor.UserID
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "quote", EntityID: strconv.FormatInt(quoteID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
