package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"koperasi-backend/internal/config"
	"koperasi-backend/internal/jobs"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository/postgres"
	"koperasi-backend/internal/scheduler"
	"koperasi-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'installment-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Koperasi Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize WhatsApp Gateway Client and Notifier
	whatsappClient := service.NewWhatsAppClient(
		cfg.WhatsApp.BaseURL,
		cfg.WhatsApp.APIKey,
		cfg.WhatsApp.Enabled,
		time.Duration(cfg.WhatsApp.TimeoutSeconds)*time.Second,
	)
	notifier := service.NewNotifier(store.NotificationRepository, store.MemberRepository, whatsappClient)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, notifier, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "installment-reminders":
		jobRunner.SendInstallmentReminders()
	case "mandatory-savings-reminders":
		jobRunner.SendMandatorySavingsReminders()
	case "retry-unsent-whatsapp":
		jobRunner.RetryUnsentWhatsApp()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - installment-reminders\n")
		fmt.Printf("  - mandatory-savings-reminders\n")
		fmt.Printf("  - retry-unsent-whatsapp\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
