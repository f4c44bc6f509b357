package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/studiofief/lune/internal/quotes"
)

// QuoteExpirer is the slice of the quote service the scan needs.
type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context) ([]quotes.Quote, error)
}

// QuoteExpiryJob expires SENT quotes past their expiry date.
type QuoteExpiryJob struct {
	quotes QuoteExpirer
	logger *slog.Logger
}

// NewQuoteExpiryJob constructs the job.
func NewQuoteExpiryJob(expirer QuoteExpirer, logger *slog.Logger) *QuoteExpiryJob {
	return &QuoteExpiryJob{quotes: expirer, logger: logger}
}

// Handle processes TaskQuotesExpiryScan tasks.
func (j *QuoteExpiryJob) Handle(ctx context.Context, _ *asynq.Task) error {
	expired, err := j.quotes.ExpireOverdue(ctx)
	if err != nil {
		return err
	}
	for _, q := range expired {
		j.logger.Info("quote expired",
			slog.Int64("quoteId", q.ID),
			slog.Int64("projectId", q.ProjectID),
			slog.String("number", q.Number))
	}
	return nil
}
