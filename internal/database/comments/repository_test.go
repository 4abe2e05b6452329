package comments

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/commentbank/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "comments.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Teacher{}, &entities.Subject{}, &entities.Comment{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func newComment(subjectID uint, kind entities.CommentKind, text string, rating int) *entities.Comment {
	return &entities.Comment{SubjectID: subjectID, TeacherID: 1, Kind: kind, Text: text, Rating: rating}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	comment := newComment(1, entities.CommentKindPersonalized, "Shows great curiosity", 5)
	require.NoError(t, repo.Create(comment))
	assert.NotZero(t, comment.ID)

	found, err := repo.GetForTeacher(comment.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Shows great curiosity", found.Text)
	assert.Equal(t, 5, found.Rating)

	_, err = repo.GetForTeacher(comment.ID, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListBySubject(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(newComment(1, entities.CommentKindPersonalized, "First", 3)))
	require.NoError(t, repo.Create(newComment(1, entities.CommentKindOutcome, "Outcome", 4)))
	require.NoError(t, repo.Create(newComment(1, entities.CommentKindPersonalized, "Second", 2)))
	require.NoError(t, repo.Create(newComment(2, entities.CommentKindPersonalized, "Elsewhere", 1)))

	t.Run("all kinds", func(t *testing.T) {
		comments, err := repo.ListBySubject(1, "")
		require.NoError(t, err)
		assert.Len(t, comments, 3)
	})

	t.Run("one kind keeps insertion order", func(t *testing.T) {
		comments, err := repo.ListBySubject(1, entities.CommentKindPersonalized)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "First", comments[0].Text)
		assert.Equal(t, "Second", comments[1].Text)
	})

	t.Run("count", func(t *testing.T) {
		total, err := repo.CountBySubject(1, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		outcomes, err := repo.CountBySubject(1, entities.CommentKindOutcome)
		require.NoError(t, err)
		assert.Equal(t, int64(1), outcomes)
	})
}

func TestRepository_Update(t *testing.T) {
	repo := setupTestDB(t)

	comment := newComment(1, entities.CommentKindPersonalized, "Old text", 2)
	require.NoError(t, repo.Create(comment))

	comment.Text = "New text"
	comment.Rating = 4
	comment.Kind = entities.CommentKindFinal
	require.NoError(t, repo.Update(comment))

	found, err := repo.GetForTeacher(comment.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "New text", found.Text)
	assert.Equal(t, 4, found.Rating)
	assert.Equal(t, entities.CommentKindFinal, found.Kind)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestDB(t)

	comment := newComment(1, entities.CommentKindPersonalized, "Delete me", 3)
	require.NoError(t, repo.Create(comment))

	assert.ErrorIs(t, repo.Delete(comment.ID, 2), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(comment.ID, 1))
	assert.ErrorIs(t, repo.Delete(comment.ID, 1), gorm.ErrRecordNotFound)

	comments, err := repo.ListBySubject(1, "")
	require.NoError(t, err)
	assert.Empty(t, comments)
}
