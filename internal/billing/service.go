package billing

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/money"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
)

// ProjectsPort is the project access the aggregator needs.
type ProjectsPort interface {
	Get(ctx context.Context, businessID, projectID int64) (*projects.Project, error)
	ResolvedPricing(ctx context.Context, businessID, projectID int64) ([]projects.PricedLine, error)
}

// QuotesPort reads the designated reference quote.
type QuotesPort interface {
	Get(ctx context.Context, businessID, id int64) (*quotes.Quote, error)
}

// InvoicesPort reads the project's invoices with their derived paid sums.
type InvoicesPort interface {
	ListByProject(ctx context.Context, businessID, projectID int64) ([]invoices.Invoice, error)
}

// BusinessPort reads the tenant VAT and deposit settings.
type BusinessPort interface {
	Get(ctx context.Context, id int64) (*businesses.Business, error)
}

// Service computes billing summaries, optionally through the versioned
// cache.
type Service struct {
	logger   *slog.Logger
	projects ProjectsPort
	quotes   QuotesPort
	invoices InvoicesPort
	business BusinessPort
	cache    *Cache
}

// NewService builds a Service instance. cache may be nil; reads then always
// recompute.
func NewService(logger *slog.Logger, projectsPort ProjectsPort, quotesPort QuotesPort, invoicesPort InvoicesPort, businessPort BusinessPort, cache *Cache) *Service {
	return &Service{
		logger:   logger,
		projects: projectsPort,
		quotes:   quotesPort,
		invoices: invoicesPort,
		business: businessPort,
		cache:    cache,
	}
}

// GetSummary returns the project summary, served from the versioned cache
// when possible. Every billing mutation bumps the project's version, so a
// hit always reflects persisted state.
func (s *Service) GetSummary(ctx context.Context, businessID, projectID int64) (*Summary, error) {
	if s.cache == nil {
		return s.ComputeSummary(ctx, businessID, projectID)
	}
	var summary Summary
	err := s.cache.FetchJSON(ctx, businessID, projectID, &summary, func(ctx context.Context) (any, error) {
		return s.ComputeSummary(ctx, businessID, projectID)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ComputeSummary recomputes the financial position of a project. The
// independent reads run concurrently.
func (s *Service) ComputeSummary(ctx context.Context, businessID, projectID int64) (*Summary, error) {
	project, err := s.projects.Get(ctx, businessID, projectID)
	if err != nil {
		return nil, err
	}

	var (
		biz      *businesses.Business
		invoiced []invoices.Invoice
		refQuote *quotes.Quote
		priced   []projects.PricedLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		biz, err = s.business.Get(gctx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		invoiced, err = s.invoices.ListByProject(gctx, businessID, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		if project.ReferenceQuoteID != nil {
			refQuote, err = s.quotes.Get(gctx, businessID, *project.ReferenceQuoteID)
			return err
		}
		priced, err = s.projects.ResolvedPricing(gctx, businessID, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summary{
		Currency:       biz.Currency,
		VATEnabled:     biz.VATEnabled,
		DepositPercent: money.ClampPercent(biz.DefaultDepositPercent),
	}
	if refQuote != nil {
		summary.Source = SourceQuote
		summary.ReferenceQuoteID = &refQuote.ID
		summary.TotalCents = refQuote.TotalCents
		summary.DepositPercent = refQuote.DepositPercent
		summary.Currency = refQuote.Currency
	} else {
		summary.Source = SourcePricing
		summary.TotalCents, summary.MissingPrice = projects.PricingTotal(priced)
	}

	summary.DepositCents = money.PercentOf(summary.TotalCents, summary.DepositPercent)
	summary.BalanceCents = summary.TotalCents - summary.DepositCents
	// VAT follows the same capture rule as the deposit: a reference quote
	// fixes the rate at issue time, live pricing uses the current settings.
	switch {
	case refQuote != nil:
		summary.VATEnabled = refQuote.VATRatePercent > 0
		summary.VATRatePercent = refQuote.VATRatePercent
		summary.VATCents = money.PercentOf(summary.TotalCents, summary.VATRatePercent)
	case biz.VATEnabled:
		summary.VATRatePercent = money.ClampPercent(biz.VATRatePercent)
		summary.VATCents = money.PercentOf(summary.TotalCents, summary.VATRatePercent)
	}
	summary.TotalWithVATCents = summary.TotalCents + summary.VATCents

	for _, inv := range invoiced {
		if inv.Status == invoices.StatusCancelled {
			continue
		}
		summary.AlreadyInvoicedCents += inv.TotalCents
		summary.AlreadyPaidCents += inv.PaidCents
	}
	if collect := summary.AlreadyInvoicedCents - summary.AlreadyPaidCents; collect > 0 {
		summary.RemainingToCollectCents = collect
	}
	if remaining := summary.TotalCents - summary.AlreadyInvoicedCents; remaining > 0 {
		summary.RemainingToInvoiceCents = remaining
	}
	return &summary, nil
}
