package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/platform/httpx"
	"github.com/studiofief/lune/internal/projects"
)

type memQuoteRepo struct {
	nextID int64
	quotes map[int64]*Quote
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{quotes: map[int64]*Quote{}}
}

func (m *memQuoteRepo) Create(_ context.Context, quote Quote) (*Quote, error) {
	m.nextID++
	quote.ID = m.nextID
	quote.Number = fmt.Sprintf("DEV-2026-%04d", m.nextID)
	quote.CreatedAt = time.Now()
	quote.UpdatedAt = quote.CreatedAt
	for i := range quote.Items {
		quote.Items[i].ID = int64(i + 1)
		quote.Items[i].QuoteID = quote.ID
	}
	stored := quote
	m.quotes[quote.ID] = &stored
	out := quote
	return &out, nil
}

func (m *memQuoteRepo) Get(_ context.Context, businessID, id int64) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok || q.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	out := *q
	return &out, nil
}

func (m *memQuoteRepo) ListByProject(_ context.Context, businessID, projectID int64) ([]Quote, error) {
	var out []Quote
	for _, q := range m.quotes {
		if q.BusinessID == businessID && q.ProjectID == projectID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *memQuoteRepo) UpdateHeader(_ context.Context, businessID, id int64, patch HeaderPatch) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok || q.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	if patch.Note != nil {
		q.Note = *patch.Note
	}
	if patch.IssuedAt != nil {
		q.IssuedAt = patch.IssuedAt
	}
	if patch.ExpiresAt != nil {
		q.ExpiresAt = patch.ExpiresAt
	}
	if patch.SignedAt != nil {
		q.SignedAt = patch.SignedAt
	}
	out := *q
	return &out, nil
}

func (m *memQuoteRepo) ReplaceItems(_ context.Context, businessID, id int64, items []Item, totals Totals) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok || q.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	if q.Status != StatusDraft {
		return nil, httpx.ErrLocked
	}
	q.Items = items
	q.TotalCents = totals.TotalCents
	q.DepositCents = totals.DepositCents
	q.BalanceCents = totals.BalanceCents
	q.VATCents = totals.VATCents
	out := *q
	return &out, nil
}

func (m *memQuoteRepo) Transition(_ context.Context, businessID, id int64, current, next Status, signedAt *time.Time, reason string) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok || q.BusinessID != businessID {
		return nil, httpx.ErrNotFound
	}
	if q.Status != current {
		return nil, httpx.ErrConflict
	}
	q.Status = next
	if signedAt != nil {
		q.SignedAt = signedAt
	}
	if next == StatusCancelled {
		q.CancelReason = reason
	}
	out := *q
	return &out, nil
}

func (m *memQuoteRepo) Delete(_ context.Context, businessID, id int64) error {
	q, ok := m.quotes[id]
	if !ok || q.BusinessID != businessID {
		return httpx.ErrNotFound
	}
	delete(m.quotes, id)
	return nil
}

func (m *memQuoteRepo) ExpireOverdue(_ context.Context, now time.Time) ([]Quote, error) {
	var expired []Quote
	for _, q := range m.quotes {
		if q.Status == StatusSent && q.ExpiresAt != nil && q.ExpiresAt.Before(now) {
			q.Status = StatusExpired
			expired = append(expired, *q)
		}
	}
	return expired, nil
}

type memProjects struct {
	project *projects.Project
	priced  []projects.PricedLine
	refID   *int64
}

func (m *memProjects) Get(_ context.Context, businessID, projectID int64) (*projects.Project, error) {
	if m.project == nil || m.project.BusinessID != businessID || m.project.ID != projectID {
		return nil, httpx.ErrNotFound
	}
	return m.project, nil
}

func (m *memProjects) ResolvedPricing(_ context.Context, _, _ int64) ([]projects.PricedLine, error) {
	return m.priced, nil
}

func (m *memProjects) SetReferenceQuote(_ context.Context, _, _ int64, quoteID *int64) error {
	m.refID = quoteID
	return nil
}

type memBusiness struct{ biz businesses.Business }

func (m *memBusiness) Get(_ context.Context, id int64) (*businesses.Business, error) {
	if m.biz.ID != id {
		return nil, httpx.ErrNotFound
	}
	out := m.biz
	return &out, nil
}

func newTestService(t *testing.T, priced []projects.PricedLine, biz businesses.Business) (*Service, *memQuoteRepo, *memProjects) {
	t.Helper()
	repo := newMemQuoteRepo()
	proj := &memProjects{
		project: &projects.Project{ID: 10, BusinessID: 1, ClientID: 5, Name: "Refonte site", Status: projects.StatusActive},
		priced:  priced,
	}
	svc := NewService(slog.Default(), repo, proj, &memBusiness{biz: biz}, nil, nil)
	return svc, repo, proj
}

func eurBusiness() businesses.Business {
	return businesses.Business{ID: 1, Name: "Studio", Currency: "EUR", DefaultDepositPercent: 30}
}

func pricedLine(label string, qty, unit int64) projects.PricedLine {
	return projects.PricedLine{
		Label:          label,
		Quantity:       qty,
		UnitPriceCents: unit,
		FinalUnitCents: unit,
		TotalCents:     unit * qty,
		Source:         projects.SourceCatalog,
	}
}

func TestCreateSnapshotsPricing(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 2, 10000)}, eurBusiness())

	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, quote.Status)
	require.Equal(t, int64(20000), quote.TotalCents)
	require.Equal(t, "EUR", quote.Currency)
	require.Len(t, quote.Items, 1)
	require.Equal(t, int64(20000), quote.Items[0].TotalCents)
	// 30% default deposit
	require.Equal(t, int64(6000), quote.DepositCents)
	require.Equal(t, int64(14000), quote.BalanceCents)
}

func TestCreateDepositSplit(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Forfait", 1, 100000)}, eurBusiness())

	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(100000), quote.TotalCents)
	require.Equal(t, int64(30000), quote.DepositCents)
	require.Equal(t, int64(70000), quote.BalanceCents)
}

func TestCreateRejectsMissingPrice(t *testing.T) {
	priced := []projects.PricedLine{
		pricedLine("Design", 1, 10000),
		{Label: "Atelier", Quantity: 1, MissingPrice: true, Source: projects.SourceNone},
	}
	svc, repo, _ := newTestService(t, priced, eurBusiness())

	_, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.quotes)
}

func TestCreateRejectsEmptyProject(t *testing.T) {
	svc, repo, _ := newTestService(t, nil, eurBusiness())

	_, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.quotes)
}

func TestCreateAppliesVAT(t *testing.T) {
	biz := eurBusiness()
	biz.VATEnabled = true
	biz.VATRatePercent = 20
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Forfait", 1, 100000)}, biz)

	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)
	require.Equal(t, float64(20), quote.VATRatePercent)
	require.Equal(t, int64(20000), quote.VATCents)
}

func TestUpdateItemsLockedOutsideDraft(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)

	items := []ItemPatch{{Label: "Design", Quantity: 1, UnitPriceCents: 99999}}
	_, err = svc.Update(context.Background(), 1, quote.ID, UpdateQuoteRequest{Items: &items})
	require.ErrorIs(t, err, httpx.ErrLocked)

	unchanged, err := svc.Get(context.Background(), 1, quote.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), unchanged.TotalCents)
}

func TestUpdateItemsRecomputesTotals(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	items := []ItemPatch{{Label: "Design + dev", Quantity: 2, UnitPriceCents: 50000}}
	updated, err := svc.Update(context.Background(), 1, quote.ID, UpdateQuoteRequest{Items: &items})
	require.NoError(t, err)
	require.Equal(t, int64(100000), updated.TotalCents)
	require.Equal(t, int64(30000), updated.DepositCents)
	require.Equal(t, int64(70000), updated.BalanceCents)
}

func TestTransitionTable(t *testing.T) {
	require.True(t, CanTransition(StatusDraft, StatusSent))
	require.True(t, CanTransition(StatusSent, StatusSigned))
	require.True(t, CanTransition(StatusSent, StatusExpired))
	require.True(t, CanTransition(StatusSigned, StatusCancelled))
	require.False(t, CanTransition(StatusDraft, StatusSigned))
	require.False(t, CanTransition(StatusSigned, StatusSent))
	require.False(t, CanTransition(StatusExpired, StatusSent))
	require.False(t, CanTransition(StatusCancelled, StatusSent))
}

func TestTransitionSentStampsDates(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	sent, err := svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)
	require.NotNil(t, sent.IssuedAt)
	require.NotNil(t, sent.ExpiresAt)
	require.WithinDuration(t, sent.IssuedAt.AddDate(0, 0, DefaultValidityDays), *sent.ExpiresAt, time.Minute)
}

func TestTransitionSignedStampsSignature(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)
	signed, err := svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSigned})
	require.NoError(t, err)
	require.NotNil(t, signed.SignedAt)
}

func TestCancelRequiresReason(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusCancelled})
	require.ErrorIs(t, err, httpx.ErrValidation)

	cancelled, err := svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusCancelled, Reason: "client abandonné"})
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, "client abandonné", cancelled.CancelReason)
}

func TestSetAsReferenceRequiresSigned(t *testing.T) {
	svc, _, proj := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)

	err = svc.SetAsReference(context.Background(), 1, 10, SetReferenceRequest{QuoteID: quote.ID})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Nil(t, proj.refID)

	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSigned})
	require.NoError(t, err)

	require.NoError(t, svc.SetAsReference(context.Background(), 1, 10, SetReferenceRequest{QuoteID: quote.ID}))
	require.NotNil(t, proj.refID)
	require.Equal(t, quote.ID, *proj.refID)
}

func TestDeleteRules(t *testing.T) {
	svc, _, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())

	draft, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), 1, draft.ID))

	signed, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), 1, signed.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), 1, signed.ID, TransitionRequest{Status: StatusSigned})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 1, signed.ID)
	require.ErrorIs(t, err, httpx.ErrLocked)

	// cancelling after signature keeps the quote undeletable
	_, err = svc.Transition(context.Background(), 1, signed.ID, TransitionRequest{Status: StatusCancelled, Reason: "erreur"})
	require.NoError(t, err)
	err = svc.Delete(context.Background(), 1, signed.ID)
	require.ErrorIs(t, err, httpx.ErrLocked)
}

func TestExpireOverdue(t *testing.T) {
	svc, repo, _ := newTestService(t, []projects.PricedLine{pricedLine("Design", 1, 10000)}, eurBusiness())
	past := time.Now().AddDate(0, 0, -1)
	quote, err := svc.Create(context.Background(), 1, 10, CreateQuoteRequest{ExpiresAt: &past})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), 1, quote.ID, TransitionRequest{Status: StatusSent})
	require.NoError(t, err)

	expired, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, StatusExpired, repo.quotes[quote.ID].Status)
}
