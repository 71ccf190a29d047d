package jobs

import (
	"context"
	"time"

	"community-platform-backend/internal/config"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	timeout  time.Duration
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Score  service.ScoreService
	Report service.ReportService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		timeout:  30 * time.Minute,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// RecalculateScores refreshes the completeness score of every profile and
// organization
func (jr *JobRunner) RecalculateScores() {
	jr.runWithRecovery("RecalculateScores", func(ctx context.Context) error {
		result, err := jr.services.Score.RecalculateAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("Scores recalculated", "profiles", result.Profiles, "organizations", result.Organizations)
		return nil
	})
}

// SendReportDigest mails the number of open abuse reports to the support address
func (jr *JobRunner) SendReportDigest() {
	jr.runWithRecovery("SendReportDigest", func(ctx context.Context) error {
		open, err := jr.services.Report.SendDigest(ctx)
		if err != nil {
			return err
		}
		logger.Info("Report digest processed", "open_reports", open)
		return nil
	})
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.RecalculateScores()
	jr.SendReportDigest()
}
