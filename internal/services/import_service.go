package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

// ImportConfig bounds what a single bulk import may contain.
type ImportConfig struct {
	MaxLines       int
	AsyncThreshold int
}

// ImportPreview is the parse and dedup outcome of a paste, before anything
// is written.
type ImportPreview struct {
	importers.Batch
	SubjectID        uint `json:"subject_id"`
	ExistingCount    int  `json:"existing_count"`
	AsyncRecommended bool `json:"async_recommended"`
}

// ImportOutcome is the result of a synchronous bulk import.
type ImportOutcome struct {
	SessionID string `json:"session_id"`
	importers.BulkSaveResult
}

// SessionReport is an import session with its decoded result once finished.
type SessionReport struct {
	entities.ImportSession
	Result *importers.BulkSaveResult `json:"result,omitempty"`
}

type importPayload struct {
	SessionID  string    `json:"session_id"`
	TeacherID  uint      `json:"teacher_id"`
	SubjectID  uint      `json:"subject_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// ImportService runs bulk comment imports for a subject: parse, dedup
// against the subject's personalized comments, then sequential saves with
// progress recorded on an ImportSession.
type ImportService struct {
	comments *CommentService
	sessions ImportSessionStore
	audit    AuditLogger
	archiver PayloadArchiver
	enqueuer ImportEnqueuer
	config   ImportConfig
}

// NewImportService creates a new ImportService. audit, archiver and
// enqueuer are optional; without an enqueuer StartAsync returns
// ErrAsyncUnavailable.
func NewImportService(comments *CommentService, sessions ImportSessionStore, audit AuditLogger, archiver PayloadArchiver, enqueuer ImportEnqueuer, cfg ImportConfig) *ImportService {
	return &ImportService{
		comments: comments,
		sessions: sessions,
		audit:    audit,
		archiver: archiver,
		enqueuer: enqueuer,
		config:   cfg,
	}
}

// Preview parses and deduplicates text without saving anything.
func (s *ImportService) Preview(ctx context.Context, teacherID, subjectID uint, text string) (*ImportPreview, error) {
	batch, existing, err := s.prepare(ctx, teacherID, subjectID, text)
	if err != nil {
		return nil, err
	}

	return &ImportPreview{
		Batch:            batch,
		SubjectID:        subjectID,
		ExistingCount:    existing,
		AsyncRecommended: s.config.AsyncThreshold > 0 && len(batch.Unique) > s.config.AsyncThreshold,
	}, nil
}

// Import runs the whole pipeline in the caller's goroutine.
func (s *ImportService) Import(ctx context.Context, teacherID, subjectID uint, text string, onProgress importers.ProgressFunc) (*ImportOutcome, error) {
	batch, _, err := s.prepare(ctx, teacherID, subjectID, text)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(teacherID, subjectID, text, len(batch.Parsed))
	if err != nil {
		return nil, err
	}

	result, err := s.execute(ctx, session, batch, onProgress)
	if err != nil {
		return nil, err
	}
	return &ImportOutcome{SessionID: session.PublicID, BulkSaveResult: result}, nil
}

// StartAsync validates the paste, stores a pending session and queues it
// for a background worker.
func (s *ImportService) StartAsync(ctx context.Context, teacherID, subjectID uint, text string) (*entities.ImportSession, error) {
	if s.enqueuer == nil {
		return nil, ErrAsyncUnavailable
	}

	batch, _, err := s.prepare(ctx, teacherID, subjectID, text)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(teacherID, subjectID, text, len(batch.Parsed))
	if err != nil {
		return nil, err
	}

	if err := s.enqueuer.EnqueueBulkImport(ctx, session.PublicID); err != nil {
		_ = s.sessions.Fail(session.PublicID, "failed to queue import")
		return nil, fmt.Errorf("failed to queue import: %w", err)
	}

	log.Printf("[IMPORT] Queued session %s: %d lines for subject %d", session.PublicID, session.TotalLines, subjectID)
	return session, nil
}

// RunSession executes a queued session. Sessions that already left the
// pending state are skipped so a redelivered task never saves twice.
func (s *ImportService) RunSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByPublicID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrImportNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load import session: %w", err)
	}

	if session.Status != entities.ImportStatusPending {
		log.Printf("[IMPORT] Session %s is %s, skipping", session.PublicID, session.Status)
		return nil
	}

	batch, _, err := s.prepare(ctx, session.TeacherID, session.SubjectID, session.RawText)
	if err != nil {
		if failErr := s.sessions.Fail(session.PublicID, err.Error()); failErr != nil {
			log.Printf("[IMPORT] Failed to mark session %s as failed: %v", session.PublicID, failErr)
		}
		if s.audit != nil {
			s.audit.LogImport(session.TeacherID, session.SubjectID, session.PublicID, importers.BulkSaveResult{}, err)
		}
		return err
	}

	if _, err := s.execute(ctx, session, batch, nil); err != nil {
		if errors.Is(err, imports.ErrAlreadyClaimed) {
			log.Printf("[IMPORT] Session %s was claimed by another worker, skipping", session.PublicID)
			return nil
		}
		return err
	}
	return nil
}

// GetSession returns a session owned by the teacher.
func (s *ImportService) GetSession(ctx context.Context, teacherID uint, sessionID string) (*SessionReport, error) {
	session, err := s.sessions.GetByPublicID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import session: %w", err)
	}
	if session.TeacherID != teacherID {
		return nil, ErrImportNotFound
	}

	report := &SessionReport{ImportSession: *session}
	if session.ResultJSON != "" {
		var result importers.BulkSaveResult
		if err := json.Unmarshal([]byte(session.ResultJSON), &result); err != nil {
			return nil, fmt.Errorf("failed to decode import result: %w", err)
		}
		report.Result = &result
	}
	return report, nil
}

// ListSessions returns the teacher's most recent import sessions.
func (s *ImportService) ListSessions(ctx context.Context, teacherID uint, limit int) ([]entities.ImportSession, error) {
	return s.sessions.ListForTeacher(teacherID, limit)
}

func (s *ImportService) prepare(ctx context.Context, teacherID, subjectID uint, text string) (importers.Batch, int, error) {
	if _, err := s.comments.GetSubject(ctx, teacherID, subjectID); err != nil {
		return importers.Batch{}, 0, err
	}

	existing, err := s.comments.ExistingComments(subjectID)
	if err != nil {
		return importers.Batch{}, 0, fmt.Errorf("failed to load existing comments: %w", err)
	}

	batch := importers.PrepareBatch(text, existing)
	if s.config.MaxLines > 0 && len(batch.Parsed) > s.config.MaxLines {
		return importers.Batch{}, 0, invalid("text", "too many comments: %d lines (max %d)", len(batch.Parsed), s.config.MaxLines)
	}
	return batch, len(existing), nil
}

func (s *ImportService) newSession(teacherID, subjectID uint, text string, lines int) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		PublicID:   uuid.New().String(),
		TeacherID:  teacherID,
		SubjectID:  subjectID,
		Status:     entities.ImportStatusPending,
		RawText:    text,
		TotalLines: lines,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create import session: %w", err)
	}

	if s.archiver != nil {
		_, err := s.archiver.SaveJSON(importPayload{
			SessionID:  session.PublicID,
			TeacherID:  teacherID,
			SubjectID:  subjectID,
			Text:       text,
			ReceivedAt: session.StartedAt,
		})
		if err != nil {
			log.Printf("[IMPORT] Failed to archive payload for session %s: %v", session.PublicID, err)
		}
	}
	return session, nil
}

// execute claims the session and saves the batch, keeping the session's
// counters in step with the sequential saver. Nothing is saved unless the
// claim succeeds.
func (s *ImportService) execute(ctx context.Context, session *entities.ImportSession, batch importers.Batch, onProgress importers.ProgressFunc) (importers.BulkSaveResult, error) {
	id := session.PublicID
	if err := s.sessions.MarkRunning(id, len(batch.Unique), batch.DuplicateCount); err != nil {
		if errors.Is(err, imports.ErrAlreadyClaimed) {
			return importers.BulkSaveResult{}, err
		}
		return importers.BulkSaveResult{}, fmt.Errorf("failed to start import session: %w", err)
	}

	var succeeded, failed int
	save := s.comments.SaveFunc(session.TeacherID)
	counting := func(ctx context.Context, req importers.CreateCommentRequest) error {
		err := save(ctx, req)
		if err != nil {
			failed++
		} else {
			succeeded++
		}
		return err
	}

	progress := func(current int) {
		if err := s.sessions.UpdateProgress(id, current, succeeded, failed); err != nil {
			log.Printf("[IMPORT] Failed to record progress for session %s: %v", id, err)
		}
		if onProgress != nil {
			onProgress(current)
		}
	}

	ownerID := strconv.FormatUint(uint64(session.SubjectID), 10)
	result := importers.NewPipeline(counting).Save(ctx, ownerID, batch, progress)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		log.Printf("[IMPORT] Failed to encode result for session %s: %v", id, err)
	}
	if err := s.sessions.Complete(id, len(result.Successful), len(result.Failed), string(resultJSON)); err != nil {
		log.Printf("[IMPORT] Failed to complete session %s: %v", id, err)
	}

	log.Printf("[IMPORT] Session %s finished: %d saved, %d failed, %d duplicates removed",
		id, len(result.Successful), len(result.Failed), result.DuplicateCount)

	if s.audit != nil {
		s.audit.LogImport(session.TeacherID, session.SubjectID, id, result, nil)
	}
	return result, nil
}
