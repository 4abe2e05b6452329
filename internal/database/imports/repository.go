// Package imports provides database operations for bulk import sessions.
//
// A session row is the progress record polled by clients while an
// asynchronous import runs, and the final result once it is done.
//
// # Usage
//
//	repo := imports.NewRepository(db)
//	err := repo.MarkRunning(session.PublicID, len(batch.Unique), batch.DuplicateCount)
//	err = repo.UpdateProgress(session.PublicID, processed, succeeded, failed)
package imports

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/entities"
)

// ErrAlreadyClaimed is returned by MarkRunning when the session has left
// the pending state, e.g. because another worker picked it up.
var ErrAlreadyClaimed = errors.New("import session already claimed")

// StaleAfter is how long a running session may go without a progress
// update before it is considered interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all import session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new import sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new session in the pending state.
func (r *Repository) Create(session *entities.ImportSession) error {
	now := time.Now()
	if session.Status == "" {
		session.Status = entities.ImportStatusPending
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	session.UpdatedAt = now
	return r.db.Create(session).Error
}

// GetByPublicID retrieves a session by its public identifier.
func (r *Repository) GetByPublicID(publicID string) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.Where("public_id = ?", publicID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListForTeacher returns the teacher's most recent sessions first.
func (r *Repository) ListForTeacher(teacherID uint, limit int) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	query := r.db.Where("teacher_id = ?", teacherID).Order("started_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// MarkRunning claims a pending session for execution once the batch size
// is known. Only one caller can win the pending -> running transition; the
// others get ErrAlreadyClaimed.
func (r *Repository) MarkRunning(publicID string, totalAttempted, duplicates int) error {
	result := r.db.Model(&entities.ImportSession{}).
		Where("public_id = ? AND status = ?", publicID, entities.ImportStatusPending).
		Updates(map[string]any{
			"status":          entities.ImportStatusRunning,
			"total_attempted": totalAttempted,
			"duplicates":      duplicates,
			"processed":       0,
			"succeeded":       0,
			"failed":          0,
			"error":           "",
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByPublicID(publicID); err != nil {
		return err
	}
	return ErrAlreadyClaimed
}

// UpdateProgress records how far the sequential save has got.
func (r *Repository) UpdateProgress(publicID string, processed, succeeded, failed int) error {
	return r.update(publicID, map[string]any{
		"processed": processed,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// Complete stores the final counters and the serialized result.
func (r *Repository) Complete(publicID string, succeeded, failed int, resultJSON string) error {
	now := time.Now()
	return r.update(publicID, map[string]any{
		"status":       entities.ImportStatusCompleted,
		"processed":    succeeded + failed,
		"succeeded":    succeeded,
		"failed":       failed,
		"result_json":  resultJSON,
		"completed_at": now,
	})
}

// Fail marks a session as failed with the given message.
func (r *Repository) Fail(publicID string, errorMsg string) error {
	now := time.Now()
	return r.update(publicID, map[string]any{
		"status":       entities.ImportStatusFailed,
		"error":        errorMsg,
		"completed_at": now,
	})
}

// FailStale fails running sessions that stopped reporting progress,
// e.g. because the process was restarted mid-import.
func (r *Repository) FailStale(now time.Time) (int64, error) {
	result := r.db.Model(&entities.ImportSession{}).
		Where("status = ? AND updated_at < ?", entities.ImportStatusRunning, now.Add(-StaleAfter)).
		Updates(map[string]any{
			"status":       entities.ImportStatusFailed,
			"error":        "import was interrupted",
			"completed_at": now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// DeleteOlderThan removes finished sessions that started before cutoff.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("status IN ? AND started_at < ?",
			[]entities.ImportStatus{entities.ImportStatusCompleted, entities.ImportStatusFailed}, cutoff).
		Delete(&entities.ImportSession{})
	return result.RowsAffected, result.Error
}

func (r *Repository) update(publicID string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&entities.ImportSession{}).
		Where("public_id = ?", publicID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
