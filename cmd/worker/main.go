package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/studiofief/lune/internal/app"
	"github.com/studiofief/lune/internal/billing"
	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/platform/cache"
	"github.com/studiofief/lune/internal/platform/db"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
	"github.com/studiofief/lune/internal/shared"
	"github.com/studiofief/lune/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	summaryCache := billing.NewCache(redisClient, cfg.SummaryCacheTTL)

	businessService := businesses.NewService(businesses.NewRepository(pool))
	catalogManager := catalog.NewManager(catalog.NewRepository(pool))
	projectService := projects.NewService(projects.NewRepository(pool), catalogManager)
	quoteService := quotes.NewService(logger, quotes.NewRepository(pool), projectService, businessService, summaryCache, auditLogger)
	invoiceService := invoices.NewService(logger, invoices.NewRepository(pool), quoteService, projectService, businessService, summaryCache, auditLogger)
	billingService := billing.NewService(logger, projectService, quoteService, invoiceService, businessService, summaryCache)

	expiryJob := jobs.NewQuoteExpiryJob(quoteService, logger)
	overdueJob := jobs.NewOverdueScanJob(invoiceService, logger)
	warmupJob := jobs.NewSummaryWarmupJob(jobs.NewPGProjectLister(pool), billingService, logger)

	warmupTask, err := jobs.NewSummaryWarmupTask("active")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskQuotesExpiryScan, Handler: expiryJob.Handle},
			{Type: jobs.TaskInvoicesOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskBillingSummaryWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewQuotesExpiryScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: jobs.NewInvoicesOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
