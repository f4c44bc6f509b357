package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/studiofief/lune/internal/app"
	"github.com/studiofief/lune/internal/auth"
	"github.com/studiofief/lune/internal/billing"
	"github.com/studiofief/lune/internal/businesses"
	"github.com/studiofief/lune/internal/catalog"
	"github.com/studiofief/lune/internal/clients"
	"github.com/studiofief/lune/internal/invoices"
	"github.com/studiofief/lune/internal/payments"
	"github.com/studiofief/lune/internal/platform/cache"
	"github.com/studiofief/lune/internal/platform/db"
	"github.com/studiofief/lune/internal/projects"
	"github.com/studiofief/lune/internal/quotes"
	"github.com/studiofief/lune/internal/shared"
	"github.com/studiofief/lune/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	sessions := auth.NewSessionStore(redisClient, cfg.SessionTTL)
	authService := auth.NewService(auth.NewRepository(pool), sessions)
	authHandler := auth.NewHandler(logger, authService)

	auditLogger := shared.NewAuditLogger(pool)
	summaryCache := billing.NewCache(redisClient, cfg.SummaryCacheTTL)

	businessService := businesses.NewService(businesses.NewRepository(pool))
	businessHandler := businesses.NewHandler(logger, businessService)

	clientService := clients.NewService(clients.NewRepository(pool))
	clientsHandler := clients.NewHandler(logger, clientService)

	catalogManager := catalog.NewManager(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogManager)

	projectService := projects.NewService(projects.NewRepository(pool), catalogManager)
	projectsHandler := projects.NewHandler(logger, projectService)

	quoteService := quotes.NewService(logger, quotes.NewRepository(pool), projectService, businessService, summaryCache, auditLogger)
	quotesHandler := quotes.NewHandler(logger, quoteService)

	invoiceService := invoices.NewService(logger, invoices.NewRepository(pool), quoteService, projectService, businessService, summaryCache, auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoiceService)

	paymentService := payments.NewService(logger, payments.NewRepository(pool, invoices.NewRepository(pool)), invoiceService, summaryCache, auditLogger)
	paymentsHandler := payments.NewHandler(logger, paymentService)

	billingService := billing.NewService(logger, projectService, quoteService, invoiceService, businessService, summaryCache)
	billingHandler := billing.NewHandler(logger, billingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     authService,
		BusinessService: businessService,
		AuthHandler:     authHandler,
		BusinessHandler: businessHandler,
		ClientsHandler:  clientsHandler,
		CatalogHandler:  catalogHandler,
		ProjectsHandler: projectsHandler,
		QuotesHandler:   quotesHandler,
		InvoicesHandler: invoicesHandler,
		PaymentsHandler: paymentsHandler,
		BillingHandler:  billingHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
