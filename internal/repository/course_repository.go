package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

// CourseRepository reads the course registry and per-user favorites. Both
// tables are owned by the course service; this API only consumes them.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course for display.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, code, title, color FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// IsFavorite reports whether the user has the course in their favorites set.
func (r *CourseRepository) IsFavorite(ctx context.Context, userID, courseID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM user_favorite_courses WHERE user_id = $1 AND course_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check favorite course: %w", err)
	}
	return count > 0, nil
}
