package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/facturo/backend/internal/application/ledger"
	apptenant "github.com/facturo/backend/internal/application/tenant"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/facturo/backend/internal/infrastructure/persistence"
	"github.com/facturo/backend/internal/infrastructure/session"
	"github.com/facturo/backend/internal/infrastructure/telemetry"
	"github.com/facturo/backend/internal/interfaces/http/handler"
	"github.com/facturo/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Facturo Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	taxRate, err := decimal.NewFromString(cfg.Ledger.TaxRate)
	if err != nil {
		log.Fatal("Invalid tax rate", zap.String("tax_rate", cfg.Ledger.TaxRate), zap.Error(err))
	}

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register session store
	sessionStore, err := session.NewRedisStore(session.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Ledger.RegisterTTL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := sessionStore.Shutdown(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Repositories and provisioner
	provisioner := persistence.NewPartitionProvisioner(db, cfg.Database.User, log)
	ledgerRepo := persistence.NewGormLedgerRepository(db)
	tenantRepo := persistence.NewGormTenantRepository(db, provisioner)

	// Application services
	issuanceService := appledger.NewIssuanceService(ledgerRepo, sessionStore, taxRate, log)
	noteService := appledger.NewNoteService(ledgerRepo, log)
	verificationService := appledger.NewVerificationService(ledgerRepo, log)
	registerService := appledger.NewRegisterService(sessionStore, ledgerRepo, log)
	onboardingService := apptenant.NewOnboardingService(tenantRepo, tenantRepo, apptenant.FormatRIFValidator{}, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.Setup(router.Config{
		Logger:         log,
		JWTService:     jwtService,
		TenantAuth:     onboardingService,
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		System:         handler.NewSystemHandler(db),
		Tenants:        handler.NewTenantHandler(onboardingService),
		Invoices:       handler.NewInvoiceHandler(issuanceService),
		Notes:          handler.NewNoteHandler(noteService),
		Registers:      handler.NewRegisterHandler(registerService),
		Verification:   handler.NewVerificationHandler(verificationService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
