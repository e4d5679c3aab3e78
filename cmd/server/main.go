package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	httpapi "arrentals-backend/internal/api/http"
	"arrentals-backend/internal/config"
	"arrentals-backend/internal/logger"
	"arrentals-backend/internal/repository/postgres"
	"arrentals-backend/internal/security"
	"arrentals-backend/internal/service"
	"arrentals-backend/internal/session"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AR Car Rentals Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Redis-backed draft session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("Failed to ping redis", "error", err)
		log.Fatalf("Failed to ping redis: %v", err)
	}
	logger.Info("Redis connection established", "address", cfg.GetRedisAddress())

	draftTTL := time.Duration(cfg.Leads.DraftTTLHours) * time.Hour
	draftStore := session.NewDraftStore(session.NewRedisKV(redisClient), draftTTL)

	// Initialize Security
	tokenValidator := security.NewTokenValidator(cfg.JWT.Secret)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	leadSvc := service.NewLeadCaptureService(store.LeadRepository)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CustomerRepository,
		store.VehicleRepository,
		store.PaymentRepository,
		store.NotificationRepository,
		leadSvc,
		emailSvc,
	)
	adminSyncSvc := service.NewAdminSyncService(
		store.BookingRepository,
		store.LeadRepository,
		store.PaymentRepository,
		cfg.Admin.PageSize,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prime the admin views, then keep them fresh from the change feed
	if err := adminSyncSvc.RefreshAll(ctx); err != nil {
		logger.Error("Failed to load admin collections", "error", err)
		log.Fatalf("Failed to load admin collections: %v", err)
	}

	changeListener, err := postgres.NewChangeListener(cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to start change listener", "error", err)
		log.Fatalf("Failed to start change listener: %v", err)
	}
	defer changeListener.Close()
	go adminSyncSvc.Run(ctx, changeListener.Events())

	// Initialize HTTP handlers
	debounce := time.Duration(cfg.Leads.DebounceMillis) * time.Millisecond
	storefrontHandler := httpapi.NewStorefrontHandler(store.VehicleRepository, draftStore, bookingSvc, leadSvc, debounce)
	adminHandler := httpapi.NewAdminHandler(adminSyncSvc, bookingSvc, leadSvc,
		store.VehicleRepository, store.CustomerRepository, store.NotificationRepository)

	router := httpapi.NewRouter(storefrontHandler, adminHandler, tokenValidator)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
