// Package jobs contains the background tasks behind the billing lifecycle:
// quote expiry, invoice overdue scanning and summary cache warmup.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskQuotesExpiryScan flips SENT quotes past their expiry to EXPIRED.
	TaskQuotesExpiryScan = "quotes:expiry_scan"
	// TaskInvoicesOverdueScan reports SENT invoices past their due date.
	TaskInvoicesOverdueScan = "invoices:overdue_scan"
	// TaskBillingSummaryWarmup precomputes billing summaries for projects.
	TaskBillingSummaryWarmup = "billing:summary_warmup"
)

// SummaryWarmupPayload selects which projects to warm.
type SummaryWarmupPayload struct {
	Scope string `json:"scope"`
}

// NewQuotesExpiryScanTask constructs the expiry scan task.
func NewQuotesExpiryScanTask() *asynq.Task {
	return asynq.NewTask(TaskQuotesExpiryScan, nil)
}

// NewInvoicesOverdueScanTask constructs the overdue scan task.
func NewInvoicesOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskInvoicesOverdueScan, nil)
}

// NewSummaryWarmupTask constructs the warmup task.
func NewSummaryWarmupTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(SummaryWarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingSummaryWarmup, data), nil
}
