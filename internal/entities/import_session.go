package entities

import (
	"time"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportSession tracks one bulk comment import from paste to final result.
type ImportSession struct {
	ID             uint         `gorm:"primaryKey" json:"-"`
	PublicID       string       `gorm:"uniqueIndex;size:36" json:"id"`
	TeacherID      uint         `gorm:"index" json:"teacher_id"`
	SubjectID      uint         `gorm:"index" json:"subject_id"`
	Status         ImportStatus `gorm:"size:20;index" json:"status"`
	RawText        string       `gorm:"type:text" json:"-"`
	TotalLines     int          `json:"total_lines"`
	TotalAttempted int          `json:"total_attempted"`
	Processed      int          `json:"processed"`
	Succeeded      int          `json:"succeeded"`
	Failed         int          `json:"failed"`
	Duplicates     int          `json:"duplicates"`
	ResultJSON     string       `gorm:"type:text" json:"-"` // serialized importers.BulkSaveResult
	Error          string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}

// IsFinished reports whether the session reached a terminal status.
func (s ImportSession) IsFinished() bool {
	return s.Status == ImportStatusCompleted || s.Status == ImportStatusFailed
}
