package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/money"
)

// OverdueLister is the slice of the invoice service the scan needs.
type OverdueLister interface {
	ListOverdue(ctx context.Context) ([]invoices.Invoice, error)
}

// OverdueScanJob flags SENT invoices past their due date so operators can
// chase them.
type OverdueScanJob struct {
	invoices OverdueLister
	logger   *slog.Logger
}

// NewOverdueScanJob constructs the job.
func NewOverdueScanJob(lister OverdueLister, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{invoices: lister, logger: logger}
}

// Handle processes TaskInvoicesOverdueScan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	overdue, err := j.invoices.ListOverdue(ctx)
	if err != nil {
		return err
	}
	for _, inv := range overdue {
		j.logger.Warn("invoice overdue",
			slog.Int64("invoiceId", inv.ID),
			slog.Int64("projectId", inv.ProjectID),
			slog.String("number", inv.Number),
			slog.String("remaining", money.Format(inv.RemainingCents(), inv.Currency)),
			slog.Time("dueAt", *inv.DueAt))
	}
	return nil
}
