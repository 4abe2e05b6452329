// Package subjects provides database operations for the subjects a teacher
// writes report comments for.
//
// # Usage
//
//	repo := subjects.NewRepository(db)
//	subject, err := repo.GetForTeacher(subjectID, teacherID)
package subjects

import (
	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/entities"
)

// Repository handles all subject database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new subjects repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subject.
func (r *Repository) Create(subject *entities.Subject) error {
	return r.db.Create(subject).Error
}

// GetForTeacher retrieves a subject only if it belongs to the teacher.
// Returns gorm.ErrRecordNotFound otherwise.
func (r *Repository) GetForTeacher(id, teacherID uint) (*entities.Subject, error) {
	var subject entities.Subject
	err := r.db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListForTeacher returns the teacher's subjects ordered by name.
func (r *Repository) ListForTeacher(teacherID uint) ([]entities.Subject, error) {
	var subjects []entities.Subject
	err := r.db.Where("teacher_id = ?", teacherID).
		Order("name ASC, class_name ASC").
		Find(&subjects).Error
	return subjects, err
}

// Delete soft-deletes a subject together with its comments.
// Returns gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(id, teacherID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND teacher_id = ?", id, teacherID).Delete(&entities.Subject{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("subject_id = ?", id).Delete(&entities.Comment{}).Error
	})
}
