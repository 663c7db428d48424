package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestCourseRepositoryIsFavorite(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_favorite_courses WHERE user_id = $1 AND course_id = $2")).
		WithArgs("user-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	favorite, err := repo.IsFavorite(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, favorite)
}

func TestCourseRepositoryIsFavoriteNegative(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("user-1", "course-9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	favorite, err := repo.IsFavorite(context.Background(), "user-1", "course-9")
	require.NoError(t, err)
	assert.False(t, favorite)
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, title, color FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "title", "color"}).
			AddRow("course-1", "CS201", "Algorithms", "#4F46E5"))

	course, err := repo.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "CS201", course.Code)
}
