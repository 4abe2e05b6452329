package entrypoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/database"
	"github.com/mrlokans/commentbank/internal/services"
	"github.com/mrlokans/commentbank/internal/tasks"
)

func testConfig(t *testing.T, archive bool) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Database: config.Database{Path: filepath.Join(dir, "commentbank.db")},
		Audit: config.Audit{
			Dir:             filepath.Join(dir, "audit"),
			RetentionDays:   30,
			ArchivePayloads: archive,
		},
		Import: config.Import{
			MaxLines:         20,
			MaxCommentLength: 200,
			AsyncThreshold:   5,
			DefaultTeacherID: 1,
		},
	}
}

func TestNewApp_ImportsThroughServices(t *testing.T) {
	cfg := testConfig(t, true)
	app, err := NewApp(cfg, nil, database.Quiet())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx := context.Background()
	subject, err := app.CommentService.CreateSubject(ctx, 1, "History", "9C")
	require.NoError(t, err)

	outcome, err := app.ImportService.Import(ctx, 1, subject.ID, "Thoughtful essays, 5\nthoughtful essays\nLate homework, 2", nil)
	require.NoError(t, err)
	assert.Len(t, outcome.Successful, 2)
	assert.Equal(t, 1, outcome.DuplicateCount)

	_, err = app.ImportService.StartAsync(ctx, 1, subject.ID, "Anything")
	assert.ErrorIs(t, err, services.ErrAsyncUnavailable)
}

func TestApp_Cleaner(t *testing.T) {
	withArchive, err := NewApp(testConfig(t, true), nil, database.Quiet())
	require.NoError(t, err)
	t.Cleanup(func() { _ = withArchive.Close() })

	cleaner := withArchive.Cleaner(testConfig(t, true))
	assert.NotNil(t, cleaner.Payloads)
	assert.NotNil(t, cleaner.Reporter)

	require.NoError(t, cleaner.Run(context.Background(), tasks.CleanupImportsTask{
		SessionRetention: time.Hour,
		RetentionDays:    30,
	}))

	withoutArchive, err := NewApp(testConfig(t, false), nil, database.Quiet())
	require.NoError(t, err)
	t.Cleanup(func() { _ = withoutArchive.Close() })

	assert.Nil(t, withoutArchive.Cleaner(testConfig(t, false)).Payloads)
}
