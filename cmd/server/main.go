package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vyam/fitness-app/internal/api"
	"vyam/fitness-app/internal/config"
	"vyam/fitness-app/internal/logging"
	"vyam/fitness-app/internal/metrics"
	"vyam/fitness-app/internal/repository/mongo"
	"vyam/fitness-app/internal/service"
	"vyam/fitness-app/internal/session"
	"vyam/fitness-app/internal/storage"
)

// @title Vyam Workout API
// @version 1.0
// @description Workout catalog, guided workout sessions, profile and history.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server exiting")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	indexCtx, cancelIndex := context.WithTimeout(ctx, time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndex()
	if err != nil {
		// The service still works without indexes, only slower.
		logger.Warn("failed to ensure indexes", zap.Error(err))
	}

	objectStorage, err := storage.NewS3Storage(ctx, cfg.S3, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutLogRepo := mongo.NewMongoWorkoutLogRepository(appDB)
	catalogCacheRepo := mongo.NewMongoCatalogCacheRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger.Named("auth"))
	catalogService := service.NewCatalogService(objectStorage, catalogCacheRepo, service.CatalogOptions{
		ObjectKey:      cfg.Catalog.ObjectKey,
		CacheTTL:       cfg.Catalog.CacheTTL,
		ImageURLExpiry: cfg.Catalog.ImageURLExpiry,
	}, logger.Named("catalog"))
	profileService := service.NewProfileService(userRepo, workoutLogRepo, catalogService, logger.Named("profile"))

	sessionManager := session.NewManager(cfg.Session.TickInterval, logger.Named("session"))
	defer sessionManager.Shutdown()
	// Signing out ends whatever session the user had running.
	unsubscribe := authService.OnAuthStateChanged(func(ev service.AuthEvent) {
		if ev.Type == service.AuthSignedOut {
			sessionManager.End(ev.UserID)
		}
	})
	defer unsubscribe()
	sessionService := service.NewSessionService(sessionManager, catalogService, profileService,
		cfg.Session.PersistTimeout, logger.Named("session"))

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	// --- HTTP ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger.Named("http")), gin.Recovery())
	api.SetupRoutes(router, api.Services{
		Auth:     authService,
		Profile:  profileService,
		Catalog:  catalogService,
		Sessions: sessionService,
	}, registry)

	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: session event streams stay open for the whole workout.
		IdleTimeout: 120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Ending sessions first closes their event streams so Shutdown can drain.
		sessionManager.Shutdown()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
