package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

// CommentService manages a teacher's subjects and their comment banks.
// Every operation is scoped to the calling teacher.
type CommentService struct {
	subjects  SubjectStore
	comments  CommentStore
	audit     AuditLogger
	maxLength int
}

// NewCommentService creates a new CommentService. A maxLength of zero
// disables the comment length check; audit may be nil.
func NewCommentService(subjects SubjectStore, comments CommentStore, audit AuditLogger, maxLength int) *CommentService {
	return &CommentService{
		subjects:  subjects,
		comments:  comments,
		audit:     audit,
		maxLength: maxLength,
	}
}

// CreateSubject adds a subject for the teacher.
func (s *CommentService) CreateSubject(ctx context.Context, teacherID uint, name, className string) (*entities.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "subject name is required")
	}
	if utf8.RuneCountInString(name) > 200 {
		return nil, invalid("name", "subject name must be at most 200 characters")
	}

	subject := &entities.Subject{
		TeacherID: teacherID,
		Name:      name,
		ClassName: strings.TrimSpace(className),
	}
	if err := s.subjects.Create(subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	if s.audit != nil {
		s.audit.LogSubject(teacherID, "subject_create", subject.ID, subject.Name)
	}
	return subject, nil
}

func (s *CommentService) ListSubjects(ctx context.Context, teacherID uint) ([]entities.Subject, error) {
	return s.subjects.ListForTeacher(teacherID)
}

// GetSubject returns ErrSubjectNotFound unless the subject belongs to the teacher.
func (s *CommentService) GetSubject(ctx context.Context, teacherID, subjectID uint) (*entities.Subject, error) {
	subject, err := s.subjects.GetForTeacher(subjectID, teacherID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subject: %w", err)
	}
	return subject, nil
}

func (s *CommentService) DeleteSubject(ctx context.Context, teacherID, subjectID uint) error {
	subject, err := s.GetSubject(ctx, teacherID, subjectID)
	if err != nil {
		return err
	}
	if err := s.subjects.Delete(subjectID, teacherID); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	if s.audit != nil {
		s.audit.LogSubject(teacherID, "subject_delete", subject.ID, subject.Name)
	}
	return nil
}

// ListComments returns a subject's comments; an empty kind lists every kind.
func (s *CommentService) ListComments(ctx context.Context, teacherID, subjectID uint, kind entities.CommentKind) ([]entities.Comment, error) {
	if kind != "" && !kind.Valid() {
		return nil, invalid("kind", "unknown comment kind %q", kind)
	}
	if _, err := s.GetSubject(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return s.comments.ListBySubject(subjectID, kind)
}

// CreateComment validates and stores one comment. The request's OwnerID is
// the subject ID; an empty kind stores a personalized comment and a zero
// rating stores the default rating.
func (s *CommentService) CreateComment(ctx context.Context, teacherID uint, kind entities.CommentKind, req importers.CreateCommentRequest) (*entities.Comment, error) {
	comment, err := s.createComment(ctx, teacherID, kind, req)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogComment(teacherID, "comment_create", comment.ID, "Created comment: "+comment.Text)
	}
	return comment, nil
}

// createComment stores a comment without an audit event. Bulk imports are
// audited once per session.
func (s *CommentService) createComment(ctx context.Context, teacherID uint, kind entities.CommentKind, req importers.CreateCommentRequest) (*entities.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subjectID, err := strconv.ParseUint(req.OwnerID, 10, 32)
	if err != nil {
		return nil, ErrSubjectNotFound
	}

	if kind == "" {
		kind = entities.CommentKindPersonalized
	}
	rating := req.Rating
	if rating == 0 {
		rating = importers.DefaultRating
	}

	comment := &entities.Comment{
		SubjectID: uint(subjectID),
		TeacherID: teacherID,
		Kind:      kind,
		Text:      strings.TrimSpace(req.Comment),
		Rating:    rating,
	}
	if err := s.validate(comment); err != nil {
		return nil, err
	}
	if _, err := s.GetSubject(ctx, teacherID, comment.SubjectID); err != nil {
		return nil, err
	}

	if err := s.comments.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return comment, nil
}

// SaveFunc adapts comment creation to the bulk import pipeline. Comments
// saved through it are personalized comments and get no per-comment audit
// event.
func (s *CommentService) SaveFunc(teacherID uint) importers.SaveFunc {
	return func(ctx context.Context, req importers.CreateCommentRequest) error {
		_, err := s.createComment(ctx, teacherID, entities.CommentKindPersonalized, req)
		return err
	}
}

// CommentUpdate carries the editable fields of a comment. Zero values keep
// the stored value.
type CommentUpdate struct {
	Text   string
	Rating int
	Kind   entities.CommentKind
}

func (s *CommentService) UpdateComment(ctx context.Context, teacherID, commentID uint, update CommentUpdate) (*entities.Comment, error) {
	comment, err := s.getComment(teacherID, commentID)
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(update.Text); text != "" {
		comment.Text = text
	}
	if update.Rating != 0 {
		comment.Rating = update.Rating
	}
	if update.Kind != "" {
		comment.Kind = update.Kind
	}
	if err := s.validate(comment); err != nil {
		return nil, err
	}

	if err := s.comments.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	if s.audit != nil {
		s.audit.LogComment(teacherID, "comment_update", comment.ID, "Updated comment: "+comment.Text)
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, teacherID, commentID uint) error {
	comment, err := s.getComment(teacherID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(commentID, teacherID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if s.audit != nil {
		s.audit.LogComment(teacherID, "comment_delete", comment.ID, "Deleted comment: "+comment.Text)
	}
	return nil
}

// ExistingComments returns the personalized comments new imports are
// deduplicated against.
func (s *CommentService) ExistingComments(subjectID uint) ([]entities.Comment, error) {
	return s.comments.ListBySubject(subjectID, entities.CommentKindPersonalized)
}

func (s *CommentService) getComment(teacherID, commentID uint) (*entities.Comment, error) {
	comment, err := s.comments.GetForTeacher(commentID, teacherID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) validate(comment *entities.Comment) error {
	if comment.Text == "" {
		return invalid("comment", "comment text is required")
	}
	if s.maxLength > 0 && utf8.RuneCountInString(comment.Text) > s.maxLength {
		return invalid("comment", "comment exceeds %d characters", s.maxLength)
	}
	if comment.Rating < importers.MinRating || comment.Rating > importers.MaxRating {
		return invalid("rating", "rating must be between %d and %d", importers.MinRating, importers.MaxRating)
	}
	if !comment.Kind.Valid() {
		return invalid("kind", "unknown comment kind %q", comment.Kind)
	}
	return nil
}
