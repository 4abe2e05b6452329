package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/database"
	"github.com/mrlokans/commentbank/internal/database/comments"
	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/database/subjects"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

type mockAudit struct {
	mu      sync.Mutex
	imports []importers.BulkSaveResult
	errs    []error
	actions []string
}

func (m *mockAudit) LogImport(_, _ uint, _ string, result importers.BulkSaveResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, result)
	m.errs = append(m.errs, err)
}

func (m *mockAudit) LogComment(_ uint, action string, _ uint, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

func (m *mockAudit) LogSubject(_ uint, action string, _ uint, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

type mockArchiver struct {
	payloads []any
}

func (m *mockArchiver) SaveJSON(data any) (string, error) {
	m.payloads = append(m.payloads, data)
	return "payload.json", nil
}

type mockEnqueuer struct {
	sessionIDs []string
	err        error
}

func (m *mockEnqueuer) EnqueueBulkImport(_ context.Context, sessionID string) error {
	if m.err != nil {
		return m.err
	}
	m.sessionIDs = append(m.sessionIDs, sessionID)
	return nil
}

type testEnv struct {
	db       *database.Database
	comments *CommentService
	imports  *ImportService
	sessions *imports.Repository
	audit    *mockAudit
	archiver *mockArchiver
	enqueuer *mockEnqueuer
}

func setupTestEnv(t *testing.T, cfg ImportConfig) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "services.db"), database.Quiet())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:       db,
		sessions: imports.NewRepository(db.DB),
		audit:    &mockAudit{},
		archiver: &mockArchiver{},
		enqueuer: &mockEnqueuer{},
	}
	env.comments = NewCommentService(subjects.NewRepository(db.DB), comments.NewRepository(db.DB), env.audit, 100)
	env.imports = NewImportService(env.comments, env.sessions, env.audit, env.archiver, env.enqueuer, cfg)
	return env
}

func (e *testEnv) createSubject(t *testing.T, teacherID uint, name string) *entities.Subject {
	t.Helper()
	subject, err := e.comments.CreateSubject(context.Background(), teacherID, name, "7B")
	require.NoError(t, err)
	return subject
}

func (e *testEnv) addComment(t *testing.T, teacherID, subjectID uint, text string) {
	t.Helper()
	require.NoError(t, e.db.DB.Create(&entities.Comment{
		SubjectID: subjectID,
		TeacherID: teacherID,
		Kind:      entities.CommentKindPersonalized,
		Text:      text,
		Rating:    3,
	}).Error)
}
