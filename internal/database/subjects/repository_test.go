package subjects

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

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "subjects.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Teacher{}, &entities.Subject{}, &entities.Comment{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupTestDB(t)

	subject := &entities.Subject{TeacherID: 1, Name: "Mathematics", ClassName: "7B"}
	require.NoError(t, repo.Create(subject))
	assert.NotZero(t, subject.ID)

	found, err := repo.GetForTeacher(subject.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", found.Name)
	assert.Equal(t, "7B", found.ClassName)
}

func TestRepository_GetForTeacher_OtherTeacher(t *testing.T) {
	repo, _ := setupTestDB(t)

	subject := &entities.Subject{TeacherID: 1, Name: "History"}
	require.NoError(t, repo.Create(subject))

	_, err := repo.GetForTeacher(subject.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListForTeacher(t *testing.T) {
	repo, _ := setupTestDB(t)

	require.NoError(t, repo.Create(&entities.Subject{TeacherID: 1, Name: "Science"}))
	require.NoError(t, repo.Create(&entities.Subject{TeacherID: 1, Name: "Art"}))
	require.NoError(t, repo.Create(&entities.Subject{TeacherID: 2, Name: "Music"}))

	subjects, err := repo.ListForTeacher(1)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Art", subjects[0].Name)
	assert.Equal(t, "Science", subjects[1].Name)
}

func TestRepository_Delete(t *testing.T) {
	repo, db := setupTestDB(t)

	subject := &entities.Subject{TeacherID: 1, Name: "Geography"}
	require.NoError(t, repo.Create(subject))
	require.NoError(t, db.Create(&entities.Comment{SubjectID: subject.ID, TeacherID: 1, Text: "Knows the capitals", Rating: 4}).Error)

	t.Run("other teacher cannot delete", func(t *testing.T) {
		err := repo.Delete(subject.ID, 2)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("owner deletes subject and comments", func(t *testing.T) {
		require.NoError(t, repo.Delete(subject.ID, 1))

		_, err := repo.GetForTeacher(subject.ID, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var remaining int64
		require.NoError(t, db.Model(&entities.Comment{}).Where("subject_id = ?", subject.ID).Count(&remaining).Error)
		assert.Zero(t, remaining)
	})
}
