package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/studiofief/lune/internal/billing"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/quotes"
)

type fakeExpirer struct {
	expired []quotes.Quote
	err     error
	calls   int
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context) ([]quotes.Quote, error) {
	f.calls++
	return f.expired, f.err
}

type fakeOverdue struct {
	overdue []invoices.Invoice
}

func (f *fakeOverdue) ListOverdue(_ context.Context) ([]invoices.Invoice, error) {
	return f.overdue, nil
}

type fakeWarmup struct {
	refs     []ProjectRef
	scope    string
	warmed   []int64
	failFor  int64
	failures int
}

func (f *fakeWarmup) ListWarmable(_ context.Context, scope string) ([]ProjectRef, error) {
	f.scope = scope
	return f.refs, nil
}

func (f *fakeWarmup) GetSummary(_ context.Context, _ int64, projectID int64) (*billing.Summary, error) {
	if projectID == f.failFor {
		f.failures++
		return nil, errors.New("boom")
	}
	f.warmed = append(f.warmed, projectID)
	return &billing.Summary{}, nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestQuoteExpiryJobRunsScan(t *testing.T) {
	expirer := &fakeExpirer{expired: []quotes.Quote{{ID: 1, ProjectID: 7, Number: "DEV-2026-0001"}}}
	job := NewQuoteExpiryJob(expirer, testLogger())

	require.NoError(t, job.Handle(context.Background(), NewQuotesExpiryScanTask()))
	require.Equal(t, 1, expirer.calls)
}

func TestQuoteExpiryJobPropagatesError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("db down")}
	job := NewQuoteExpiryJob(expirer, testLogger())

	require.Error(t, job.Handle(context.Background(), NewQuotesExpiryScanTask()))
}

func TestOverdueScanJobReportsInvoices(t *testing.T) {
	due := time.Now().AddDate(0, 0, -10)
	lister := &fakeOverdue{overdue: []invoices.Invoice{{
		ID:         3,
		ProjectID:  7,
		Number:     "FAC-2026-0003",
		Currency:   "EUR",
		TotalCents: 50000,
		PaidCents:  20000,
		DueAt:      &due,
	}}}
	job := NewOverdueScanJob(lister, testLogger())

	require.NoError(t, job.Handle(context.Background(), NewInvoicesOverdueScanTask()))
}

func TestSummaryWarmupJobWarmsEveryProject(t *testing.T) {
	warm := &fakeWarmup{refs: []ProjectRef{
		{BusinessID: 1, ProjectID: 10},
		{BusinessID: 1, ProjectID: 11},
	}}
	job := NewSummaryWarmupJob(warm, warm, testLogger())

	task, err := NewSummaryWarmupTask("active")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "active", warm.scope)
	require.Equal(t, []int64{10, 11}, warm.warmed)
}

func TestSummaryWarmupJobSkipsFailingProject(t *testing.T) {
	warm := &fakeWarmup{
		refs:    []ProjectRef{{BusinessID: 1, ProjectID: 10}, {BusinessID: 1, ProjectID: 11}},
		failFor: 10,
	}
	job := NewSummaryWarmupJob(warm, warm, testLogger())

	task, err := NewSummaryWarmupTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, warm.failures)
	require.Equal(t, []int64{11}, warm.warmed)
}

func TestSummaryWarmupJobRejectsBadPayload(t *testing.T) {
	warm := &fakeWarmup{}
	job := NewSummaryWarmupJob(warm, warm, testLogger())

	err := job.Handle(context.Background(), asynq.NewTask(TaskBillingSummaryWarmup, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
