// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - SubjectStore: Subjects owned by a teacher (internal/services/interfaces.go)
//   - CommentStore: The comment bank itself (internal/services/interfaces.go)
//   - ImportSessionStore: Bulk import progress (internal/services/interfaces.go)
//
// ## Audit Interfaces
//
//   - AuditLogger: Non-blocking change log (internal/services/interfaces.go)
//   - PayloadArchiver: Raw paste archives (internal/services/interfaces.go)
//   - LoginRecorder: Login outcomes (internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - ImportEnqueuer: Queues an async import session (internal/services/interfaces.go)
//   - BulkImportRunner: Executes a queued session (internal/tasks/bulk_import.go)
//   - CleanupEnqueuer: Queues a retention run (internal/scheduler/cleanup.go)
//   - SessionCleaner, AuditEventCleaner, PayloadCleaner, CleanupReporter:
//     Retention targets (internal/tasks/cleanup_imports.go)
//
// ## Import Pipeline
//
//   - TextSource: Anything deduplication can compare (internal/importers/dedup.go)
//   - SaveFunc: Persists one comment (internal/importers/saver.go)
//
// # Adding a New Comment Destination
//
// The pipeline only needs a SaveFunc, so a new destination is a function:
//
//	func (c *MISClient) CreateComment(ctx context.Context, req importers.CreateCommentRequest) error {
//	    // Return *importers.RejectionError for structured refusals
//	}
//
//	result := importers.NewPipeline(misClient.CreateComment).Save(ctx, subjectID, batch, nil)
//
// Stored comments from the destination take part in deduplication once they
// implement TextSource:
//
//	func (c MISComment) CommentText() string { return c.Body }
//
//	batch := importers.PrepareBatch(text, existing)
//
// # Adding a New Background Task
//
//  1. Define the task and its queue in internal/tasks/:
//
//     type ExportCommentsTask struct {
//         SubjectID uint `json:"subject_id"`
//     }
//
//     func (t ExportCommentsTask) Config() backlite.QueueConfig
//
//     func NewExportCommentsQueue(exporter Exporter) backlite.Queue
//
//  2. Register the queue in entrypoint.go before the client starts
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/reports/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ services.ReportStore = (*reports.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
