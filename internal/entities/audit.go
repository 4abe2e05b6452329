package entities

import "time"

type AuditEventType string

const (
	AuditEventImport  AuditEventType = "import"
	AuditEventComment AuditEventType = "comment"
	AuditEventSubject AuditEventType = "subject"
	AuditEventAuth    AuditEventType = "auth"
	AuditEventCleanup AuditEventType = "cleanup"
)

// AuditEntityType names the record an audit event is about.
type AuditEntityType string

const (
	AuditEntitySubject AuditEntityType = "subject"
	AuditEntityComment AuditEntityType = "comment"
)

// ParseAuditEntityType reports whether s names a known entity type.
func ParseAuditEntityType(s string) (AuditEntityType, bool) {
	switch t := AuditEntityType(s); t {
	case AuditEntitySubject, AuditEntityComment:
		return t, true
	}
	return "", false
}

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusPartial AuditStatus = "partial"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TeacherID   uint            `gorm:"index" json:"teacher_id"`
	EventType   AuditEventType  `gorm:"index;size:50" json:"event_type"`
	Action      string          `gorm:"size:100" json:"action"`      // e.g., "bulk_import", "comment_delete"
	Description string          `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  AuditEntityType `gorm:"size:50;index:idx_audit_entity" json:"entity_type"`
	EntityID    *uint           `gorm:"index:idx_audit_entity" json:"entity_id,omitempty"`
	Metadata    string          `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus     `gorm:"size:20" json:"status"`
	ErrorMsg    string          `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
