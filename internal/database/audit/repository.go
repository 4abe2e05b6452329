package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/entities"
)

const defaultPageSize = 50

// EventFilter narrows an audit query. Zero fields match everything; a
// zero TeacherID spans all teachers.
type EventFilter struct {
	TeacherID  uint
	EventType  entities.AuditEventType
	EntityType entities.AuditEntityType
	EntityID   *uint
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// FindEvents returns one page of events matching the filter, newest first,
// with the total number of matches.
func (r *Repository) FindEvents(filter EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// EntityHistory returns every event recorded against one subject or
// comment, oldest first. A deleted comment keeps its history until the
// retention cleanup removes it.
func (r *Repository) EntityHistory(teacherID uint, entityType entities.AuditEntityType, entityID uint) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.filtered(EventFilter{TeacherID: teacherID, EntityType: entityType, EntityID: &entityID}).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

func (r *Repository) filtered(filter EventFilter) *gorm.DB {
	query := r.db.Model(&entities.AuditEvent{})
	if filter.TeacherID > 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	return query
}
