package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "ab-eam-backend/internal/api/http"
	"ab-eam-backend/internal/config"
	"ab-eam-backend/internal/jobs"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository/sqlite"
	"ab-eam-backend/internal/scheduler"
	"ab-eam-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	rollback := flag.Bool("rollback", false, "Roll back the most recent migration and exit")
	migrationStatus := flag.Bool("migration-status", false, "Print migration status and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AB-EAM backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "cors_origin", cfg.CORS.AllowedOrigin)
	logger.Info("Database configuration", "path", cfg.Database.Path)

	// Connect to the embedded database. A connection failure is fatal;
	// the process must not serve traffic without storage.
	db := sqlite.New(cfg.Database.Path)
	if err := db.Connect(); err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Bring the schema to the latest version before anything else runs.
	migrator := sqlite.NewMigrator(db, sqlite.DefaultRegistry())
	ctx := context.Background()

	if *migrationStatus {
		status, err := migrator.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		logger.Info("Migration status",
			"current_version", status.CurrentVersion,
			"pending", status.PendingCount,
			"total", status.TotalMigrations)
		return
	}

	if *rollback {
		if err := migrator.Rollback(ctx); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		return
	}

	if err := migrator.Migrate(ctx); err != nil {
		logger.Error("Migration failed, aborting startup", "error", err)
		log.Fatalf("Migration failed: %v", err)
	}
	status, err := migrator.Status(ctx)
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	logger.Info("Schema up to date", "version", status.CurrentVersion, "migrations", status.TotalMigrations)

	// Initialize repositories
	store := sqlite.NewStore(db)

	// Initialize services
	emailSvc := service.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	registrationSvc := service.NewRegistrationService(store, emailSvc)
	userSvc := service.NewUserService(store.UserRepository)
	programSvc := service.NewProgramService(store.ProgramRepository, store.UserRepository)
	enrollmentSvc := service.NewEnrollmentService(store, store.ProgramRepository, store.UserRepository)

	// Initialize scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(jobs.NewJobRunner(store, cfg))
		sched.Start()
		defer sched.Stop()
	}

	// Initialize HTTP server
	apiServer := httpapi.NewServer(registrationSvc, userSvc, programSvc, enrollmentSvc, cfg.CORS.AllowedOrigin)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
