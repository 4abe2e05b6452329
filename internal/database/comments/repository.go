// Package comments provides database operations for the comment bank.
//
// # Usage
//
//	repo := comments.NewRepository(db)
//	existing, err := repo.ListBySubject(subjectID, entities.CommentKindPersonalized)
package comments

import (
	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/entities"
)

// Repository handles all comment database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new comments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a single comment.
func (r *Repository) Create(comment *entities.Comment) error {
	return r.db.Omit("Subject").Create(comment).Error
}

// GetForTeacher retrieves a comment only if it belongs to the teacher.
func (r *Repository) GetForTeacher(id, teacherID uint) (*entities.Comment, error) {
	var comment entities.Comment
	err := r.db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListBySubject returns a subject's comments in insertion order.
// An empty kind returns comments of every kind.
func (r *Repository) ListBySubject(subjectID uint, kind entities.CommentKind) ([]entities.Comment, error) {
	var comments []entities.Comment
	query := r.db.Where("subject_id = ?", subjectID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Order("id ASC").Find(&comments).Error
	return comments, err
}

// CountBySubject counts a subject's comments, optionally of one kind.
func (r *Repository) CountBySubject(subjectID uint, kind entities.CommentKind) (int64, error) {
	var count int64
	query := r.db.Model(&entities.Comment{}).Where("subject_id = ?", subjectID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Count(&count).Error
	return count, err
}

// Update persists the text, rating and kind of an existing comment.
func (r *Repository) Update(comment *entities.Comment) error {
	return r.db.Model(comment).
		Select("text", "rating", "kind").
		Updates(comment).Error
}

// Delete soft-deletes a comment owned by the teacher.
// Returns gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(id, teacherID uint) error {
	result := r.db.Where("id = ? AND teacher_id = ?", id, teacherID).Delete(&entities.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
