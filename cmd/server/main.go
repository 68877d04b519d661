package main

import (
	"alcyxob/coach-sync/internal/api"
	"alcyxob/coach-sync/internal/config"
	"alcyxob/coach-sync/internal/repository/mongo"
	"alcyxob/coach-sync/internal/service"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// main wires the plan-distribution service: config, MongoDB, repositories,
// services, HTTP routes, and graceful shutdown.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("missing jwt verification secret (JWT_SECRET)")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established",
		zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsurePlanIndexes(ctx, appDB)
		mongo.EnsureMembershipIndexes(ctx, appDB.Collection("memberships"))
		mongo.EnsureCompletionIndexes(ctx, appDB.Collection("completions"))
		logger.Info("index creation process completed")
	}()

	// --- Initialize Repositories ---
	directoryRepo := mongo.NewMongoDirectoryRepository(appDB)
	membershipRepo := mongo.NewMongoMembershipRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	completionRepo := mongo.NewMongoCompletionRepository(appDB)

	// --- Initialize Services ---
	directoryService := service.NewDirectoryService(directoryRepo)
	membershipService := service.NewMembershipService(membershipRepo)
	publisherService := service.NewPublisherService(planRepo, completionRepo)
	completionService := service.NewCompletionService(completionRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret,
		directoryService, membershipService, publisherService, completionService,
		planRepo, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the SSE feed endpoints hold their response open.
		IdleTimeout: 120 * time.Second,
	}

	logger.Info("server starting", zap.String("address", cfg.Server.Address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
