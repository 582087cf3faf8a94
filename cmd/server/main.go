package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	apppayment "github.com/clinicfin/backend/internal/application/payment"
	apptax "github.com/clinicfin/backend/internal/application/tax"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/clinicfin/backend/internal/infrastructure/cache"
	"github.com/clinicfin/backend/internal/infrastructure/config"
	"github.com/clinicfin/backend/internal/infrastructure/logger"
	"github.com/clinicfin/backend/internal/infrastructure/migration"
	paymentinfra "github.com/clinicfin/backend/internal/infrastructure/payment"
	"github.com/clinicfin/backend/internal/infrastructure/persistence"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/source"
	"github.com/clinicfin/backend/internal/infrastructure/scheduler"
	"github.com/clinicfin/backend/internal/infrastructure/telemetry"
	"github.com/clinicfin/backend/internal/interfaces/http/handler"
	"github.com/clinicfin/backend/internal/interfaces/http/middleware"
	"github.com/clinicfin/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/clinicfin/backend/docs"
)

//	@title			Clinic Finance API
//	@version		1.0
//	@description	Financial consolidation for veterinary clinics: ledger classification, monthly snapshots, tax figures,
//	@description	payment webhook reconciliation and scheduled backfills.

//	@contact.name	Clinic Finance Backend
//	@contact.url	https://github.com/clinicfin/backend

//	@host		localhost:8080
//	@BasePath	/

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := bootLog
	if core := logProvider.Core(); core != nil {
		if log, err = logger.New(logCfg, core); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting clinic finance backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	metrics, err := telemetry.NewFinanceMetrics(meterProvider.Meter("clinicfin"))
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(&cfg.Database, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Source adapters follow whatever schema the clinic database exposes
	registry := source.NewRegistry(source.Detect(ctx, db.DB, log), log)
	scope := persistence.NewGormTransactionScope(db.DB, registry)

	rates := cfg.Tax.Rates
	policy, err := tax.PolicyByName(cfg.Tax.BracketPolicy, rates.FatorRThreshold)
	if err != nil {
		log.Fatal("Invalid tax bracket policy", zap.Error(err))
	}
	taxService := apptax.NewTaxService(scope, apptax.ServiceConfig{
		DefaultServiceTaxRate: rates.DefaultServiceTaxRate,
		WithholdingRate:       rates.WithholdingRate,
		WithholdingThreshold:  rates.WithholdingThreshold,
		Policy:                policy,
	}, log)
	classifier := appledger.NewClassificationService(scope, log)
	snapshots := appledger.NewSnapshotService(scope, classifier, taxService, log)
	backfill := appledger.NewBackfillService(scope, snapshots, log, appledger.BackfillConfig{
		Months:      cfg.Backfill.Months,
		CellTimeout: cfg.Backfill.CellTimeout,
	})

	backfillScheduler := scheduler.NewBackfillScheduler(&meteredRunner{runner: backfill, metrics: metrics}, log,
		scheduler.BackfillSchedulerConfig{
			Enabled:    cfg.Backfill.Enabled,
			DayOfMonth: cfg.Backfill.DayOfMonth,
			Hour:       cfg.Backfill.Hour,
			Months:     cfg.Backfill.Months,
			RunTimeout: cfg.Backfill.RunTimeout,
		})
	if err := backfillScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start backfill scheduler", zap.Error(err))
	}

	reconciler, closeLocker, err := newReconciler(ctx, cfg, scope, classifier, snapshots, log)
	if err != nil {
		log.Fatal("Failed to initialize payment reconciliation", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Warn("Error closing payment locker", zap.Error(err))
		}
	}()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.SpanAttributes(),
	)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	handler.NewHealthHandler(sqlDB).Register(engine)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine)
	bodyLimit := middleware.BodyLimit(cfg.HTTP.MaxBodySize)
	r.Mount("", handler.NewLedgerHandler(classifier, snapshots, taxService, metrics), bodyLimit)
	r.Mount("", handler.NewBackfillHandler(backfillScheduler), bodyLimit)
	if reconciler != nil {
		// the webhook handler enforces its own, smaller limit
		r.Register(handler.NewWebhookHandler(reconciler, cfg.HTTP.MaxWebhookBodySize, metrics))
	}
	routes := r.Setup()
	log.Info("Routes registered", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		err = errors.Join(err, backfillScheduler.Stop(shutdownCtx))
		err = errors.Join(err, db.Close())
		err = errors.Join(err, meterProvider.Shutdown(shutdownCtx))
		err = errors.Join(err, tracerProvider.Shutdown(shutdownCtx))
		return errors.Join(err, logProvider.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// newReconciler wires webhook reconciliation. Outside production a missing
// secret or access token disables the webhook route instead of failing startup.
func newReconciler(
	ctx context.Context,
	cfg *config.Config,
	scope appledger.TransactionScope,
	classifier *appledger.ClassificationService,
	snapshots *appledger.SnapshotService,
	log *zap.Logger,
) (*apppayment.ReconciliationService, func() error, error) {
	noClose := func() error { return nil }

	verifier, err := payment.NewSignatureVerifier(cfg.Payment.WebhookSecret)
	if err != nil {
		if cfg.App.IsProduction() {
			return nil, noClose, err
		}
		log.Warn("Payment webhook secret not set, webhook route disabled")
		return nil, noClose, nil
	}

	provider, err := paymentinfra.NewMercadoPagoAdapter(paymentinfra.MercadoPagoConfig{
		BaseURL:     cfg.Payment.ProviderBaseURL,
		AccessToken: cfg.Payment.AccessToken,
		Timeout:     cfg.Payment.RequestTimeout,
	}, log)
	if err != nil {
		if cfg.App.IsProduction() {
			return nil, noClose, err
		}
		log.Warn("Payment provider not configured, webhook route disabled", zap.Error(err))
		return nil, noClose, nil
	}

	factory := cache.NewLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	locker, closeLocker, err := factory.Create(ctx)
	if err != nil {
		return nil, noClose, err
	}

	return apppayment.NewReconciliationService(scope, verifier, provider, classifier, snapshots, locker, log,
		apppayment.ReconciliationConfig{
			ProviderTimeout: cfg.Payment.RequestTimeout,
			LockTimeout:     cfg.Payment.LockTimeout,
		}), closeLocker, nil
}

// migrateUp applies the embedded migrations on a dedicated connection;
// the migrator closes it when done.
func migrateUp(cfg *config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Options{}, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// meteredRunner records backfill cell counts for every run, scheduled or manual
type meteredRunner struct {
	runner  scheduler.BackfillRunner
	metrics *telemetry.FinanceMetrics
}

func (r *meteredRunner) Run(ctx context.Context, months int, clinicIDs []uuid.UUID) (*appledger.BackfillResult, error) {
	start := time.Now()
	result, err := r.runner.Run(ctx, months, clinicIDs)
	r.metrics.RecordDuration(ctx, "ledger.backfill", time.Since(start), err)
	if result != nil {
		r.metrics.RecordBackfill(ctx, result.Processed, len(result.Failures))
	}
	return result, err
}
