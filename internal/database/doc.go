// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── subjects/        # Subjects owned by a teacher
//	├── comments/        # Comment bank CRUD
//	├── imports/         # Bulk import session progress
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./commentbank.db")
//
//	subjectsRepo := subjects.NewRepository(db.DB)
//	commentsRepo := comments.NewRepository(db.DB)
//
//	subject, err := subjectsRepo.GetForTeacher(subjectID, teacherID)
//	bank, err := commentsRepo.ListBySubject(subject.ID, entities.CommentKindPersonalized)
//
// Repositories return gorm.ErrRecordNotFound untouched; mapping it to a
// domain error is the job of the services package.
package database
