package jobs

import (
	"ab-eam-backend/internal/config"
	"ab-eam-backend/internal/logger"
	"ab-eam-backend/internal/repository/sqlite"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store  *sqlite.Store
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *sqlite.Store, cfg *config.Config) *JobRunner {
	return &JobRunner{store: store, config: cfg}
}

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
