package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studiofief/lune/internal/billing"
)

// ProjectRef identifies a project inside its business.
type ProjectRef struct {
	BusinessID int64
	ProjectID  int64
}

// ProjectLister enumerates the projects to warm.
type ProjectLister interface {
	ListWarmable(ctx context.Context, scope string) ([]ProjectRef, error)
}

// SummarySource computes a project summary, populating the cache on the way.
type SummarySource interface {
	GetSummary(ctx context.Context, businessID, projectID int64) (*billing.Summary, error)
}

// SummaryWarmupJob precomputes billing summaries so dashboard reads hit the
// cache.
type SummaryWarmupJob struct {
	projects ProjectLister
	billing  SummarySource
	logger   *slog.Logger
}

// NewSummaryWarmupJob constructs the job.
func NewSummaryWarmupJob(projects ProjectLister, source SummarySource, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{projects: projects, billing: source, logger: logger}
}

// Handle processes TaskBillingSummaryWarmup tasks. A failing project does
// not abort the batch.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SummaryWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Scope == "" {
		payload.Scope = "active"
	}
	refs, err := j.projects.ListWarmable(ctx, payload.Scope)
	if err != nil {
		return err
	}
	warmed := 0
	for _, ref := range refs {
		if _, err := j.billing.GetSummary(ctx, ref.BusinessID, ref.ProjectID); err != nil {
			j.logger.Warn("summary warmup failed", slog.Int64("projectId", ref.ProjectID), slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.logger.Info("summary warmup done", slog.String("scope", payload.Scope), slog.Int("projects", warmed))
	return nil
}

// PGProjectLister lists warmable projects straight from PostgreSQL.
type PGProjectLister struct {
	pool *pgxpool.Pool
}

// NewPGProjectLister constructs a lister.
func NewPGProjectLister(pool *pgxpool.Pool) *PGProjectLister {
	return &PGProjectLister{pool: pool}
}

// ListWarmable returns projects matching the scope; "active" restricts to
// ACTIVE projects, anything else warms every non-archived one.
func (l *PGProjectLister) ListWarmable(ctx context.Context, scope string) ([]ProjectRef, error) {
	query := `SELECT business_id, id FROM projects WHERE status <> 'ARCHIVED'`
	if scope == "active" {
		query = `SELECT business_id, id FROM projects WHERE status = 'ACTIVE'`
	}
	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []ProjectRef
	for rows.Next() {
		var ref ProjectRef
		if err := rows.Scan(&ref.BusinessID, &ref.ProjectID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
