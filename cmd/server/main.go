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

	_ "github.com/lib/pq"

	apihttp "koperasi-backend/internal/api/http"
	"koperasi-backend/internal/config"
	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository/postgres"
	"koperasi-backend/internal/security"
	"koperasi-backend/internal/service"
	"koperasi-backend/internal/storage"
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
	logger.Info("Starting Koperasi Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Initialize Proof Storage
	if cfg.Storage.Type != "local" {
		log.Fatalf("Unsupported storage type: %s", cfg.Storage.Type)
	}
	logger.Info("Using local proof storage", "upload_dir", cfg.Storage.UploadDir)
	proofStorage, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize proof storage", "error", err)
		log.Fatalf("Failed to initialize proof storage: %v", err)
	}

	// Initialize WhatsApp Gateway Client
	whatsappClient := service.NewWhatsAppClient(
		cfg.WhatsApp.BaseURL,
		cfg.WhatsApp.APIKey,
		cfg.WhatsApp.Enabled,
		time.Duration(cfg.WhatsApp.TimeoutSeconds)*time.Second,
	)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services. The member locks are shared: withdrawals, autopay
	// and approvals all guard the same balances.
	memberLocks := service.NewMemberLocks()
	notifier := service.NewNotifier(store.NotificationRepository, store.MemberRepository, whatsappClient)
	authSvc := service.NewAuthService(store.MemberRepository, tokenManager, emailSvc, notifier)
	memberSvc := service.NewMemberService(store.MemberRepository)
	savingsSvc := service.NewSavingsService(store.MemberRepository, store.TransactionRepository, memberLocks)
	loanSvc := service.NewLoanService(store.MemberRepository, store.LoanRepository, store.TransactionRepository, notifier, service.LoanLimits{
		MonthlyRatePercent: cfg.Loan.MonthlyRatePercent,
		MaxPrincipal:       cfg.Loan.MaxPrincipal,
		MaxTenureMonths:    int32(cfg.Loan.MaxTenureMonths),
	}, memberLocks)
	approvalSvc := service.NewApprovalService(
		store.MemberRepository,
		store.TransactionRepository,
		store.LoanRepository,
		notifier,
		emailSvc,
		whatsappClient,
		memberLocks,
	)
	shuSvc := service.NewSHUService(store.SHURepository, store.TransactionRepository, notifier, domain.SHUConfig{
		ReserveRatio:            cfg.SHU.ReserveRatio,
		SavingsSharePercent:     cfg.SHU.SavingsSharePercent,
		TransactionSharePercent: cfg.SHU.TransactionSharePercent,
		SocialFundPercent:       cfg.SHU.SocialFundPercent,
		ManagementPercent:       cfg.SHU.ManagementPercent,
	})
	notificationSvc := service.NewNotificationService(store.NotificationRepository)

	// Build the router
	router := apihttp.NewRouter(apihttp.Services{
		Auth:          authSvc,
		Members:       memberSvc,
		Savings:       savingsSvc,
		Loans:         loanSvc,
		Approvals:     approvalSvc,
		SHU:           shuSvc,
		Notifications: notificationSvc,
		WhatsApp:      whatsappClient,
	}, tokenManager, proofStorage, apihttp.UploadPolicy{
		MaxBytes:     cfg.Storage.MaxFileSize << 20,
		AllowedTypes: cfg.Storage.AllowedTypes,
	}, db)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
