package services

import (
	"context"

	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

// SubjectStore provides persistence for subjects.
type SubjectStore interface {
	Create(subject *entities.Subject) error
	GetForTeacher(id, teacherID uint) (*entities.Subject, error)
	ListForTeacher(teacherID uint) ([]entities.Subject, error)
	Delete(id, teacherID uint) error
}

// CommentStore provides persistence for the comment bank.
type CommentStore interface {
	Create(comment *entities.Comment) error
	GetForTeacher(id, teacherID uint) (*entities.Comment, error)
	ListBySubject(subjectID uint, kind entities.CommentKind) ([]entities.Comment, error)
	CountBySubject(subjectID uint, kind entities.CommentKind) (int64, error)
	Update(comment *entities.Comment) error
	Delete(id, teacherID uint) error
}

// ImportSessionStore tracks bulk import progress.
type ImportSessionStore interface {
	Create(session *entities.ImportSession) error
	GetByPublicID(publicID string) (*entities.ImportSession, error)
	ListForTeacher(teacherID uint, limit int) ([]entities.ImportSession, error)
	MarkRunning(publicID string, totalAttempted, duplicates int) error
	UpdateProgress(publicID string, processed, succeeded, failed int) error
	Complete(publicID string, succeeded, failed int, resultJSON string) error
	Fail(publicID string, errorMsg string) error
}

// AuditLogger records user-visible changes. Implementations must not block.
type AuditLogger interface {
	LogImport(teacherID, subjectID uint, sessionID string, result importers.BulkSaveResult, err error)
	LogComment(teacherID uint, action string, commentID uint, description string)
	LogSubject(teacherID uint, action string, subjectID uint, subjectName string)
}

// PayloadArchiver keeps a copy of raw import payloads.
type PayloadArchiver interface {
	SaveJSON(data any) (string, error)
}

// ImportEnqueuer hands an import session to the background workers.
type ImportEnqueuer interface {
	EnqueueBulkImport(ctx context.Context, sessionID string) error
}
