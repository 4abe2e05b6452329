package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/audit"
	"github.com/mrlokans/commentbank/internal/database"
	auditrepo "github.com/mrlokans/commentbank/internal/database/audit"
	"github.com/mrlokans/commentbank/internal/database/comments"
	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/database/subjects"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/services"
)

const testTeacherID = uint(1)

type fakeEnqueuer struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeEnqueuer) EnqueueBulkImport(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, sessionID)
	return nil
}

type routerEnv struct {
	router   *gin.Engine
	db       *database.Database
	comments *services.CommentService
	imports  *services.ImportService
	audit    *audit.Service
	enqueuer *fakeEnqueuer
}

// setupRouterEnv builds the full router in AUTH_MODE=none on a fresh
// database. withQueue controls whether async imports are available.
func setupRouterEnv(t *testing.T, withQueue bool) *routerEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"), database.Quiet())
	require.NoError(t, err)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(func() {
		auditService.Wait()
		db.Close()
	})

	env := &routerEnv{db: db, audit: auditService}
	env.comments = services.NewCommentService(subjects.NewRepository(db.DB), comments.NewRepository(db.DB), auditService, 50)

	var enqueuer services.ImportEnqueuer
	if withQueue {
		env.enqueuer = &fakeEnqueuer{}
		enqueuer = env.enqueuer
	}
	env.imports = services.NewImportService(env.comments, imports.NewRepository(db.DB), auditService, nil, enqueuer,
		services.ImportConfig{MaxLines: 10, AsyncThreshold: 2})

	env.router = NewRouter(RouterConfig{
		CommentService:   env.comments,
		ImportService:    env.imports,
		AuditService:     auditService,
		Database:         db,
		DefaultTeacherID: testTeacherID,
		Version:          "test",
		TasksEnabled:     withQueue,
	})
	return env
}

func (e *routerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *routerEnv) createSubject(t *testing.T, teacherID uint, name string) *entities.Subject {
	t.Helper()
	subject, err := e.comments.CreateSubject(context.Background(), teacherID, name, "9C")
	require.NoError(t, err)
	return subject
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
