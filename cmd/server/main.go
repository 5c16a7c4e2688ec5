package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hermes/backend/internal/application/push"
	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/application/sync"
	"github.com/hermes/backend/internal/infrastructure/cache"
	"github.com/hermes/backend/internal/infrastructure/config"
	"github.com/hermes/backend/internal/infrastructure/logger"
	"github.com/hermes/backend/internal/infrastructure/persistence"
	"github.com/hermes/backend/internal/infrastructure/pipedrive"
	"github.com/hermes/backend/internal/infrastructure/tc2"
	"github.com/hermes/backend/internal/infrastructure/telemetry"
	"github.com/hermes/backend/internal/interfaces/http/handler"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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
		_ = log.Sync()
	}()

	log.Info("Starting Hermes",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if cfg.Telemetry.Enabled {
		if err := telemetry.InstrumentDB(db.DB); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	adminRepo := persistence.NewGormAdminRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	dealRepo := persistence.NewGormDealRepository(db.DB)
	pipelineRepo := persistence.NewGormPipelineRepository(db.DB)
	stageRepo := persistence.NewGormStageRepository(db.DB)
	meetingRepo := persistence.NewGormMeetingRepository(db.DB)
	customFieldRepo := persistence.NewGormCustomFieldRepository(db.DB)
	customValueRepo := persistence.NewGormCustomFieldValueRepository(db.DB)
	entityFinder := persistence.NewGormEntityFinder(db.DB)

	// Compile the validation contracts from the stored definitions
	registry := schema.NewRegistry(customFieldRepo, entityFinder, log)
	if err := registry.Build(context.Background()); err != nil {
		log.Fatal("Failed to build schema contracts", zap.Error(err))
	}

	// External system clients
	redisClient := cache.NewRedisClient(&cfg.Redis)
	fieldCache := cache.NewFieldCache(redisClient, cfg.Pipedrive.FieldCacheTTL)
	pdClient := pipedrive.NewClient(&cfg.Pipedrive, log)
	fieldService := pipedrive.NewFieldService(pdClient, fieldCache, log)
	tc2Client := tc2.NewClient(&cfg.TC2, log)

	// Sync engine
	normalizer := sync.NewNormalizer(registry, log)
	propagator := sync.NewPropagator(dealRepo, customFieldRepo, customValueRepo, log)
	reconciler := sync.NewReconciler(sync.ReconcilerParams{
		Companies:    companyRepo,
		Contacts:     contactRepo,
		Deals:        dealRepo,
		Meetings:     meetingRepo,
		Pipelines:    pipelineRepo,
		Stages:       stageRepo,
		CustomFields: customFieldRepo,
		CustomValues: customValueRepo,
		Propagator:   propagator,
		Logger:       log,
	})
	tc2Processor := sync.NewTC2Processor(normalizer, reconciler, companyRepo, contactRepo, tc2Client, log)

	// Outbound push pipeline
	pusher := push.NewPusher(push.PusherParams{
		Companies:    companyRepo,
		Contacts:     contactRepo,
		Deals:        dealRepo,
		Admins:       adminRepo,
		Pipelines:    pipelineRepo,
		Stages:       stageRepo,
		CustomFields: customFieldRepo,
		CustomValues: customValueRepo,
		Pipedrive:    pdClient,
		TC2:          tc2Client,
		TC2BaseURL:   cfg.TC2.BaseURL,
		Logger:       log,
	})
	dispatcher := push.NewDispatcher(pusher, cfg.Push.Workers, cfg.Push.QueueSize, log)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(handler.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.App.Name))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	handler.NewRouter(engine).
		Register(handler.NewPipedriveHandler(normalizer, reconciler, dispatcher, cfg.Pipedrive.WebhookToken, log)).
		Register(handler.NewTC2Handler(tc2Processor, dispatcher, cfg.TC2.WebhookToken, log)).
		Register(handler.NewSchemaHandler(customFieldRepo, registry, fieldService, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing redis", zap.Error(err))
	}
	log.Info("Server exited")
}
