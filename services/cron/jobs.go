package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/academic-system/records-api/model"
)

const cronLogRetention = 90 * 24 * time.Hour

// CompleteEndedSemesters flips active enrollments in sections whose
// semester has ended to completed. Runs hourly so records settle soon
// after a semester closes.
func (m *CronManager) CompleteEndedSemesters() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "complete_ended_semesters"

	updated, err := m.enrollments.CompleteSemesterEnrollments(ctx, time.Now())
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Completed %d enrollments", updated))
}

// PurgeExpiredBlacklist deletes blacklist entries whose tokens have
// expired on their own. Runs daily.
func (m *CronManager) PurgeExpiredBlacklist() {
	jobName := "purge_expired_blacklist"

	result := m.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge blacklist: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Purged %d expired entries", result.RowsAffected))
}

// TrimCronLogs deletes job log rows older than the retention window.
func (m *CronManager) TrimCronLogs() {
	jobName := "trim_cron_logs"

	cutoff := time.Now().Add(-cronLogRetention)
	result := m.db.Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to trim cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Trimmed %d log rows", result.RowsAffected))
}
