package scheduler

import (
	"testing"

	"community-platform-backend/internal/config"
	"community-platform-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		RecalculateScores: "0 0 3 * * *",
		ReportDigest:      "0 0 8 * * 1",
	}}

	s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
}

func TestNewScheduler_InvalidExpression(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		RecalculateScores: "every night",
		ReportDigest:      "0 0 8 * * 1",
	}}

	_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	assert.ErrorContains(t, err, "RecalculateScores")
}
