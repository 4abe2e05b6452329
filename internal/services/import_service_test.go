package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/database/imports"
	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

func countComments(t *testing.T, env *testEnv, subjectID uint) int {
	t.Helper()
	stored, err := env.comments.ExistingComments(subjectID)
	require.NoError(t, err)
	return len(stored)
}

func TestImportService_Preview(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{MaxLines: 50, AsyncThreshold: 1})
	subject := env.createSubject(t, 1, "Mathematics")
	env.addComment(t, 1, subject.ID, "Works hard")

	preview, err := env.imports.Preview(context.Background(), 1, subject.ID, "works  HARD, 4\nNeeds focus, 2\nneeds focus\n\nAsks good questions")
	require.NoError(t, err)

	assert.Len(t, preview.Parsed, 4)
	assert.Equal(t, []importers.ParsedComment{
		{Text: "Needs focus", Rating: 2},
		{Text: "Asks good questions", Rating: 3},
	}, preview.Unique)
	assert.Equal(t, 2, preview.DuplicateCount)
	assert.Equal(t, []importers.ParsedComment{
		{Text: "works  HARD", Rating: 4},
		{Text: "needs focus", Rating: 3},
	}, preview.RemovedDuplicates)
	assert.Equal(t, 1, preview.ExistingCount)
	assert.True(t, preview.AsyncRecommended)

	assert.Equal(t, 1, countComments(t, env, subject.ID))
	sessions, err := env.imports.ListSessions(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestImportService_Import(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{MaxLines: 50})
	subject := env.createSubject(t, 1, "Science")
	env.addComment(t, 1, subject.ID, "Great lab work")
	long := strings.Repeat("y", 120)

	var progress []int
	outcome, err := env.imports.Import(context.Background(), 1, subject.ID,
		"Great lab work, 5\nExplains ideas clearly, 4\n"+long+"\nexplains ideas clearly",
		func(n int) { progress = append(progress, n) })
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.TotalAttempted)
	assert.Equal(t, []importers.SavedComment{{Text: "Explains ideas clearly", Rating: 4}}, outcome.Successful)
	assert.Equal(t, []importers.FailedSave{{LineNumber: 2, OriginalText: long, Reason: "comment exceeds 100 characters"}}, outcome.Failed)
	assert.Equal(t, 2, outcome.DuplicateCount)
	assert.Equal(t, []int{1, 2}, progress)
	assert.Equal(t, 2, countComments(t, env, subject.ID))

	report, err := env.imports.GetSession(context.Background(), 1, outcome.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, report.Status)
	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 2, report.TotalAttempted)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Duplicates)
	require.NotNil(t, report.Result)
	assert.Equal(t, outcome.BulkSaveResult, *report.Result)

	require.Len(t, env.audit.imports, 1)
	assert.NoError(t, env.audit.errs[0])
	require.Len(t, env.archiver.payloads, 1)
	assert.Equal(t, outcome.SessionID, env.archiver.payloads[0].(importPayload).SessionID)
}

func TestImportService_Import_EmptyText(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})
	subject := env.createSubject(t, 1, "Music")

	outcome, err := env.imports.Import(context.Background(), 1, subject.ID, "\n  \n", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.TotalAttempted)
	assert.Empty(t, outcome.Successful)
	assert.Empty(t, outcome.Failed)
}

func TestImportService_Import_TooManyLines(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{MaxLines: 2})
	subject := env.createSubject(t, 1, "History")

	_, err := env.imports.Import(context.Background(), 1, subject.ID, "a\nb\nc", nil)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)
	assert.Equal(t, 0, countComments(t, env, subject.ID))
}

func TestImportService_Import_UnknownSubject(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})
	subject := env.createSubject(t, 1, "Geography")

	_, err := env.imports.Import(context.Background(), 2, subject.ID, "Map work is neat", nil)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestImportService_StartAsyncAndRun(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{MaxLines: 50})
	subject := env.createSubject(t, 1, "English")
	ctx := context.Background()

	session, err := env.imports.StartAsync(ctx, 1, subject.ID, "Reads widely, 5\nreads widely\nWrites with flair, 4")
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusPending, session.Status)
	assert.Equal(t, []string{session.PublicID}, env.enqueuer.sessionIDs)
	assert.Equal(t, 0, countComments(t, env, subject.ID))

	require.NoError(t, env.imports.RunSession(ctx, session.PublicID))

	report, err := env.imports.GetSession(ctx, 1, session.PublicID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, report.Status)
	require.NotNil(t, report.Result)
	assert.Len(t, report.Result.Successful, 2)
	assert.Equal(t, 1, report.Result.DuplicateCount)
	assert.Equal(t, 2, countComments(t, env, subject.ID))

	t.Run("redelivered task does not save twice", func(t *testing.T) {
		require.NoError(t, env.imports.RunSession(ctx, session.PublicID))
		assert.Equal(t, 2, countComments(t, env, subject.ID))
	})

	t.Run("other teacher cannot read the session", func(t *testing.T) {
		_, err := env.imports.GetSession(ctx, 2, session.PublicID)
		assert.ErrorIs(t, err, ErrImportNotFound)
	})
}

// staleSessionStore serves a snapshot taken before another worker claimed
// the session, as a second delivery racing the first would see it.
type staleSessionStore struct {
	*imports.Repository
	snapshot entities.ImportSession
}

func (s *staleSessionStore) GetByPublicID(string) (*entities.ImportSession, error) {
	session := s.snapshot
	return &session, nil
}

func TestImportService_RunSession_ConcurrentDelivery(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{MaxLines: 50})
	subject := env.createSubject(t, 1, "Music")
	ctx := context.Background()

	session, err := env.imports.StartAsync(ctx, 1, subject.ID, "Keeps time, 5\nSings in tune")
	require.NoError(t, err)

	// The first delivery has claimed the session but not saved anything yet.
	require.NoError(t, env.sessions.MarkRunning(session.PublicID, 2, 0))

	racing := NewImportService(env.comments, &staleSessionStore{Repository: env.sessions, snapshot: *session},
		env.audit, nil, env.enqueuer, ImportConfig{MaxLines: 50})
	require.NoError(t, racing.RunSession(ctx, session.PublicID))

	assert.Equal(t, 0, countComments(t, env, subject.ID))
	stored, err := env.sessions.GetByPublicID(session.PublicID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusRunning, stored.Status)
}

func TestImportService_StartAsync_WithoutQueue(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})
	subject := env.createSubject(t, 1, "Art")
	svc := NewImportService(env.comments, env.sessions, nil, nil, nil, ImportConfig{})

	_, err := svc.StartAsync(context.Background(), 1, subject.ID, "Bold colours")
	assert.ErrorIs(t, err, ErrAsyncUnavailable)
}

func TestImportService_StartAsync_EnqueueFails(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})
	subject := env.createSubject(t, 1, "Art")
	env.enqueuer.err = errors.New("queue down")

	_, err := env.imports.StartAsync(context.Background(), 1, subject.ID, "Bold colours")
	require.Error(t, err)

	sessions, err := env.imports.ListSessions(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, entities.ImportStatusFailed, sessions[0].Status)
}

func TestImportService_RunSession_SubjectDeleted(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})
	subject := env.createSubject(t, 1, "Drama")
	ctx := context.Background()

	session, err := env.imports.StartAsync(ctx, 1, subject.ID, "Projects voice well")
	require.NoError(t, err)
	require.NoError(t, env.comments.DeleteSubject(ctx, 1, subject.ID))

	err = env.imports.RunSession(ctx, session.PublicID)
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	report, err := env.imports.GetSession(ctx, 1, session.PublicID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailed, report.Status)
	assert.Equal(t, "subject not found", report.Error)
	require.Len(t, env.audit.errs, 1)
	assert.Error(t, env.audit.errs[0])
}

func TestImportService_RunSession_Unknown(t *testing.T) {
	env := setupTestEnv(t, ImportConfig{})

	err := env.imports.RunSession(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrImportNotFound)
}
