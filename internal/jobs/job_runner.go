package jobs

import (
	"database/sql"

	"koperasi-backend/internal/config"
	"koperasi-backend/internal/logger"
	"koperasi-backend/internal/repository/postgres"
	"koperasi-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	notifier *service.Notifier
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, notifier *service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		notifier: notifier,
		config:   cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllJobs runs every job once (for manual execution via the cronjob binary)
func (jr *JobRunner) RunAllJobs() {
	jr.SendInstallmentReminders()
	jr.SendMandatorySavingsReminders()
	jr.RetryUnsentWhatsApp()
}
