package http

import (
	"github.com/mrlokans/commentbank/internal/audit"
	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/database"
	"github.com/mrlokans/commentbank/internal/services"
)

// RouterConfig carries every dependency NewRouter wires into handlers.
type RouterConfig struct {
	CommentService *services.CommentService
	ImportService  *services.ImportService
	AuditService   *audit.Service
	Database       *database.Database

	// Authentication; all nil when AUTH_MODE=none
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	AuthConfig     config.Auth

	// Used when AuthMiddleware is nil
	DefaultTeacherID uint

	Version      string
	TasksEnabled bool
}
