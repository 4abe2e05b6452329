package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/commentbank/internal/audit"
	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/database/comments"
	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/database/subjects"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
	"github.com/mrlokans/commentbank/internal/scheduler"
	"github.com/mrlokans/commentbank/internal/services"
	"github.com/mrlokans/commentbank/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.SubjectStore = (*subjects.Repository)(nil)
var _ services.CommentStore = (*comments.Repository)(nil)
var _ services.ImportSessionStore = (*imports.Repository)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.AuditLogger = (*audit.Service)(nil)
var _ services.PayloadArchiver = (*audit.Auditor)(nil)
var _ auth.LoginRecorder = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ services.ImportEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ tasks.BulkImportRunner = (*services.ImportService)(nil)

// Retention cleanup
var _ tasks.SessionCleaner = (*imports.Repository)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.PayloadCleaner = (*audit.Auditor)(nil)
var _ tasks.CleanupReporter = (*audit.Service)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.TokenValidator = (*auth.Service)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

// Deduplication sources
var _ importers.TextSource = importers.ParsedComment{}
var _ importers.TextSource = entities.Comment{}
