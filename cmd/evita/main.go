package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/evita-erp/evita-erp/internal/analytics"
	"github.com/evita-erp/evita-erp/internal/app"
	"github.com/evita-erp/evita-erp/internal/auth"
	"github.com/evita-erp/evita-erp/internal/catalog"
	"github.com/evita-erp/evita-erp/internal/collections"
	"github.com/evita-erp/evita-erp/internal/customers"
	"github.com/evita-erp/evita-erp/internal/invoicing"
	"github.com/evita-erp/evita-erp/internal/observability"
	"github.com/evita-erp/evita-erp/internal/platform/cache"
	"github.com/evita-erp/evita-erp/internal/platform/db"
	"github.com/evita-erp/evita-erp/internal/purchasing"
	"github.com/evita-erp/evita-erp/internal/quotes"
	"github.com/evita-erp/evita-erp/internal/shared"
	"github.com/evita-erp/evita-erp/internal/suppliers"
	"github.com/evita-erp/evita-erp/jobs"
	"github.com/evita-erp/evita-erp/report"
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

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: 10})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, redisClient, cfg.AuthTokenTTL)
	authHandler := auth.NewHandler(logger, authService)

	invoiceSeq := shared.NewPGSequence(pool, shared.SeqInvoices, "FC", logger)
	invoicingRepo := invoicing.NewRepository(pool)
	invoicingService := invoicing.NewService(invoicingRepo, invoiceSeq)
	invoicingHandler := invoicing.NewHandler(logger, invoicingService)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if !pdfClient.Available(ctx) {
		logger.Warn("gotenberg unreachable, PDF endpoints will return 502", slog.String("url", cfg.GotenbergURL))
	}
	renderer := report.NewRenderer(pdfClient)

	receiptSeq := shared.NewPGSequence(pool, shared.SeqReceipts, "RC", logger)
	collectionsRepo := collections.NewRepository(pool)
	collectionsService := collections.NewService(collectionsRepo, receiptSeq, logger, metrics)
	collectionsHandler := collections.NewHandler(logger, collectionsService, renderer, renderer)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	orderSeq := shared.NewPGSequence(pool, shared.SeqOrders, "PO", logger)
	purchasingRepo := purchasing.NewRepository(pool)
	purchasingService := purchasing.NewService(purchasingRepo, suppliersService, orderSeq)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService, renderer)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	quoteSeq := shared.NewPGSequence(pool, shared.SeqQuotes, "PR", logger)
	quotesRepo := quotes.NewRepository(pool)
	quotesService := quotes.NewService(quotesRepo, invoicingService, quoteSeq)
	quotesHandler := quotes.NewHandler(logger, quotesService)

	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsRepo := analytics.NewRepository(pool)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(jobClient, inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthService:        authService,
		AuthHandler:        authHandler,
		InvoicingHandler:   invoicingHandler,
		CollectionsHandler: collectionsHandler,
		PurchasingHandler:  purchasingHandler,
		CatalogHandler:     catalogHandler,
		SuppliersHandler:   suppliersHandler,
		CustomersHandler:   customersHandler,
		QuotesHandler:      quotesHandler,
		AnalyticsHandler:   analyticsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
