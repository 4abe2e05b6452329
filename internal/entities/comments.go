package entities

import (
	"time"

	"gorm.io/gorm"
)

type CommentKind string

const (
	CommentKindOutcome      CommentKind = "outcome"
	CommentKindPersonalized CommentKind = "personalized"
	CommentKindFinal        CommentKind = "final"
)

// Valid reports whether k is one of the known comment kinds.
func (k CommentKind) Valid() bool {
	switch k {
	case CommentKindOutcome, CommentKindPersonalized, CommentKindFinal:
		return true
	}
	return false
}

// Subject is a class/subject pair a teacher writes report comments for,
// e.g. "Mathematics" for "7B".
type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TeacherID uint           `gorm:"index" json:"teacher_id"`
	Name      string         `gorm:"size:200" json:"name"`
	ClassName string         `gorm:"size:100" json:"class_name,omitempty"`
	Teacher   Teacher        `gorm:"foreignKey:TeacherID" json:"-"`
	Comments  []Comment      `gorm:"foreignKey:SubjectID" json:"comments,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SubjectID uint           `gorm:"index" json:"subject_id"`
	TeacherID uint           `gorm:"index" json:"teacher_id"`
	Kind      CommentKind    `gorm:"size:20;index;default:'personalized'" json:"kind"`
	Text      string         `gorm:"type:text" json:"text"`
	Rating    int            `gorm:"default:3" json:"rating"`
	Subject   Subject        `gorm:"foreignKey:SubjectID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentText lets stored comments take part in import deduplication.
func (c Comment) CommentText() string {
	return c.Text
}
