package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SessionCleaner removes finished import sessions and fails abandoned ones.
type SessionCleaner interface {
	FailStale(now time.Time) (int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PayloadCleaner removes archived import payloads.
type PayloadCleaner interface {
	DeleteOlderThan(cutoff time.Time) (int, error)
}

// CleanupReporter records the outcome of a cleanup run.
type CleanupReporter interface {
	LogCleanup(description string, err error)
}

// Cleaner bundles everything a retention cleanup touches. Payloads and
// Reporter are optional.
type Cleaner struct {
	Sessions SessionCleaner
	Audit    AuditEventCleaner
	Payloads PayloadCleaner
	Reporter CleanupReporter
}

// CleanupImportsTask applies the retention policy to import sessions,
// audit events and archived payloads.
type CleanupImportsTask struct {
	SessionRetention time.Duration `json:"session_retention"`
	RetentionDays    int           `json:"retention_days"`
}

// Config returns the queue configuration for cleanup tasks.
func (t CleanupImportsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_imports",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Run performs the cleanup synchronously.
func (c *Cleaner) Run(ctx context.Context, task CleanupImportsTask) error {
	if c == nil || c.Sessions == nil || c.Audit == nil {
		return fmt.Errorf("cleanup not configured")
	}

	sessionRetention := task.SessionRetention
	if sessionRetention <= 0 {
		sessionRetention = 7 * 24 * time.Hour
	}
	retentionDays := task.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}
	auditRetention := time.Duration(retentionDays) * 24 * time.Hour
	now := time.Now()

	var errs []error
	stale, err := c.Sessions.FailStale(now)
	if err != nil {
		errs = append(errs, fmt.Errorf("fail stale sessions: %w", err))
	}
	sessions, err := c.Sessions.DeleteOlderThan(now.Add(-sessionRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("delete import sessions: %w", err))
	}
	events, err := c.Audit.DeleteOldEvents(auditRetention)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete audit events: %w", err))
	}
	var payloads int
	if c.Payloads != nil {
		payloads, err = c.Payloads.DeleteOlderThan(now.Add(-auditRetention))
		if err != nil {
			errs = append(errs, fmt.Errorf("delete payload archives: %w", err))
		}
	}

	summary := fmt.Sprintf("Removed %d import sessions, %d audit events, %d payload archives; %d stale sessions failed",
		sessions, events, payloads, stale)
	runErr := errors.Join(errs...)
	if c.Reporter != nil {
		c.Reporter.LogCleanup(summary, runErr)
	}
	if runErr != nil {
		return fmt.Errorf("cleanup imports: %w", runErr)
	}

	log.Printf("[TASK] %s", summary)
	return nil
}

// CleanupImportsProcessor creates a processor function for CleanupImportsTask.
func CleanupImportsProcessor(cleaner *Cleaner) backlite.QueueProcessor[CleanupImportsTask] {
	return func(ctx context.Context, task CleanupImportsTask) error {
		return cleaner.Run(ctx, task)
	}
}

// NewCleanupImportsQueue creates a backlite queue for cleanup tasks.
func NewCleanupImportsQueue(cleaner *Cleaner) backlite.Queue {
	return backlite.NewQueue(CleanupImportsProcessor(cleaner))
}
