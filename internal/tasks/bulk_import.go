package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// BulkImportRunner executes a queued import session.
type BulkImportRunner interface {
	RunSession(ctx context.Context, sessionID string) error
}

// BulkImportTask saves the comments of one pending import session.
type BulkImportTask struct {
	SessionID string `json:"session_id"`
}

// Config returns the queue configuration for bulk import tasks.
// Saves are not idempotent, so a failed run is never retried.
func (t BulkImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "bulk_import",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BulkImportProcessor creates a processor function for BulkImportTask.
func BulkImportProcessor(runner BulkImportRunner) backlite.QueueProcessor[BulkImportTask] {
	return func(ctx context.Context, task BulkImportTask) error {
		if runner == nil {
			return fmt.Errorf("bulk import runner not configured")
		}

		log.Printf("[TASK] Running bulk import session %s", task.SessionID)
		if err := runner.RunSession(ctx, task.SessionID); err != nil {
			return fmt.Errorf("bulk import %s: %w", task.SessionID, err)
		}
		return nil
	}
}

// NewBulkImportQueue creates a backlite queue for bulk import tasks.
func NewBulkImportQueue(runner BulkImportRunner) backlite.Queue {
	return backlite.NewQueue(BulkImportProcessor(runner))
}
