package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/commentbank/internal/database/audit"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogImport records the outcome of a bulk comment import.
func (s *Service) LogImport(teacherID, subjectID uint, sessionID string, result importers.BulkSaveResult, err error) {
	event := &entities.AuditEvent{
		TeacherID:  teacherID,
		EventType:  entities.AuditEventImport,
		Action:     "bulk_import",
		EntityType: entities.AuditEntitySubject,
		EntityID:   &subjectID,
		Description: fmt.Sprintf("Imported %d of %d comments (%d failed, %d duplicates removed)",
			len(result.Successful), result.TotalAttempted, len(result.Failed), result.DuplicateCount),
		Status: importStatus(result),
	}

	metadata := map[string]any{
		"session_id":      sessionID,
		"total_attempted": result.TotalAttempted,
		"succeeded":       len(result.Successful),
		"failed":          len(result.Failed),
		"duplicates":      result.DuplicateCount,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogComment records a change to a single comment.
func (s *Service) LogComment(teacherID uint, action string, commentID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		TeacherID:   teacherID,
		EventType:   entities.AuditEventComment,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entities.AuditEntityComment,
		EntityID:    &commentID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogSubject records a change to a subject.
func (s *Service) LogSubject(teacherID uint, action string, subjectID uint, subjectName string) {
	s.LogAsync(&entities.AuditEvent{
		TeacherID:   teacherID,
		EventType:   entities.AuditEventSubject,
		Action:      action,
		Description: truncate("Subject: "+subjectName, 500),
		EntityType:  entities.AuditEntitySubject,
		EntityID:    &subjectID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(teacherID uint, action string, success bool) {
	event := &entities.AuditEvent{
		TeacherID: teacherID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogCleanup records a retention cleanup run.
func (s *Service) LogCleanup(description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      "retention_cleanup",
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// FindEvents retrieves one page of audit events matching the filter.
func (s *Service) FindEvents(filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.FindEvents(filter, limit, offset)
}

// EntityHistory retrieves the teacher's events for one subject or comment,
// oldest first.
func (s *Service) EntityHistory(teacherID uint, entityType entities.AuditEntityType, entityID uint) ([]entities.AuditEvent, error) {
	return s.repo.EntityHistory(teacherID, entityType, entityID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func importStatus(result importers.BulkSaveResult) entities.AuditStatus {
	switch {
	case len(result.Failed) == 0:
		return entities.AuditStatusSuccess
	case len(result.Successful) == 0:
		return entities.AuditStatusFailed
	default:
		return entities.AuditStatusPartial
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
