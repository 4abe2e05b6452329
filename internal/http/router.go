package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/config"
)

// NewRouter builds the gin engine with middleware and all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	// Sessions load first so CSRF's request replacement keeps the session
	// context.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSave())
	}
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService))
	}

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, config.AuthModeNone, cfg.DefaultTeacherID)
	}
	router.Use(authMiddleware.Handler())

	health := NewHealthController(cfg.Database, cfg.Version, cfg.TasksEnabled)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router.Group("/api/auth"))
	}

	api := router.Group("/api")

	if cfg.CommentService != nil {
		subjects := NewSubjectsController(cfg.CommentService)
		api.GET("/subjects", subjects.ListSubjects)
		api.POST("/subjects", subjects.CreateSubject)
		api.DELETE("/subjects/:id", subjects.DeleteSubject)

		comments := NewCommentsController(cfg.CommentService)
		api.GET("/subjects/:id/comments", comments.ListComments)
		api.POST("/subjects/:id/comments", comments.CreateComment)
		api.PUT("/comments/:id", comments.UpdateComment)
		api.DELETE("/comments/:id", comments.DeleteComment)
	}

	if cfg.ImportService != nil {
		bulk := NewBulkImportController(cfg.ImportService)
		api.POST("/subjects/:id/comments/bulk/preview", bulk.Preview)
		api.POST("/subjects/:id/comments/bulk", bulk.Import)
		api.POST("/subjects/:id/comments/bulk/async", bulk.ImportAsync)
		api.GET("/imports", bulk.ListSessions)
		api.GET("/imports/:id", bulk.GetSession)
	}

	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
