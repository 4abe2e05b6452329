package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/commentbank/internal/audit"
	"github.com/mrlokans/commentbank/internal/auth"
	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/database"
	auditrepo "github.com/mrlokans/commentbank/internal/database/audit"
	"github.com/mrlokans/commentbank/internal/database/comments"
	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/database/subjects"
	http_controllers "github.com/mrlokans/commentbank/internal/http"
	"github.com/mrlokans/commentbank/internal/scheduler"
	"github.com/mrlokans/commentbank/internal/services"
	"github.com/mrlokans/commentbank/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill is SIGTERM; SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// HTTP drains before the task workers stop.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// App holds the services shared by the HTTP server and the CLI commands.
type App struct {
	DB             *database.Database
	CommentService *services.CommentService
	ImportService  *services.ImportService
	AuditService   *audit.Service
	Auditor        *audit.Auditor
	Sessions       *imports.Repository
}

// NewApp opens the database and builds the comment and import services.
// enqueuer may be nil, in which case async imports are unavailable.
func NewApp(cfg *config.Config, enqueuer services.ImportEnqueuer, opts ...database.Option) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	auditor := audit.NewAuditor(cfg.Audit.Dir)
	sessions := imports.NewRepository(db.DB)

	commentService := services.NewCommentService(
		subjects.NewRepository(db.DB),
		comments.NewRepository(db.DB),
		auditService,
		cfg.Import.MaxCommentLength,
	)

	var archiver services.PayloadArchiver
	if cfg.Audit.ArchivePayloads {
		archiver = auditor
	}

	importService := services.NewImportService(commentService, sessions, auditService, archiver, enqueuer, services.ImportConfig{
		MaxLines:       cfg.Import.MaxLines,
		AsyncThreshold: cfg.Import.AsyncThreshold,
	})

	return &App{
		DB:             db,
		CommentService: commentService,
		ImportService:  importService,
		AuditService:   auditService,
		Auditor:        auditor,
		Sessions:       sessions,
	}, nil
}

// Close flushes pending audit events and closes the database.
func (a *App) Close() error {
	a.AuditService.Wait()
	return a.DB.Close()
}

// Cleaner returns the retention cleanup wired to the app's stores.
func (a *App) Cleaner(cfg *config.Config) *tasks.Cleaner {
	cleaner := &tasks.Cleaner{
		Sessions: a.Sessions,
		Audit:    a.AuditService,
		Reporter: a.AuditService,
	}
	if cfg.Audit.ArchivePayloads {
		cleaner.Payloads = a.Auditor
	}
	return cleaner
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting commentbank v%s", version)

	// The task client only needs the database path, so it is created before
	// the services and handed to them as the async enqueuer.
	var taskClient *tasks.Client
	var enqueuer services.ImportEnqueuer
	if cfg.Tasks.Enabled {
		var err error
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		enqueuer = taskClient
	} else {
		log.Printf("Task queue disabled - async bulk imports are unavailable")
	}

	app, err := NewApp(cfg, enqueuer)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	cleaner := app.Cleaner(cfg)

	var taskCtxCancel context.CancelFunc
	var cleanupEnqueuer scheduler.CleanupEnqueuer
	if taskClient != nil {
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewBulkImportQueue(app.ImportService),
			tasks.NewCleanupImportsQueue(cleaner),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		cleanupEnqueuer = taskClient
	}

	cleanupScheduler := scheduler.NewCleanupScheduler(cfg.Cleanup, cfg.Audit, cleaner, cleanupEnqueuer)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		CommentService:   app.CommentService,
		ImportService:    app.ImportService,
		AuditService:     app.AuditService,
		Database:         app.DB,
		AuthConfig:       cfg.Auth,
		DefaultTeacherID: cfg.Import.DefaultTeacherID,
		Version:          version,
		TasksEnabled:     taskClient != nil,
	}

	var authController *auth.AuthController
	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService := auth.NewService(app.DB.DB, cfg.Auth)

		sqlDB, err := app.DB.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		csrfSecret, err := auth.CSRFKey(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to derive CSRF key: %v", err)
		}
		if cfg.Auth.SessionSecret == "" {
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		authController = auth.NewAuthController(authService, sessionManager, cfg.Auth, app.AuditService)

		routerCfg.AuthService = authService
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth.Mode, cfg.Import.DefaultTeacherID)
		routerCfg.AuthController = authController
		routerCfg.SessionManager = sessionManager
		routerCfg.CSRFSecret = csrfSecret

		hasTeachers, _ := authService.HasTeachers()
		if !hasTeachers {
			log.Printf("No teachers found. Run 'commentbank create-teacher' to create an account.")
		}
	} else {
		log.Printf("Authentication mode: none (requests act as teacher %d)", cfg.Import.DefaultTeacherID)
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if authController != nil {
			authController.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
