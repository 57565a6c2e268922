package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/course"
)

const (
	courseColumns     = `id, title, description, price, instructor_id, created_at`
	enrollmentColumns = `user_id, course_id, amount_paid, created_at`
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `INSERT INTO course (` + courseColumns + `)
		VALUES (:id, :title, :description, :price, :instructor_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		return course.Course{}, wrap(err, "inserting course")
	}
	return c, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	q := `SELECT ` + courseColumns + ` FROM course ORDER BY title`
	if err := repo.db.SelectContext(ctx, &courses, q); err != nil {
		return nil, wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	q := `SELECT ` + courseColumns + ` FROM course WHERE id = $1`
	if err := repo.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, wrap(err, "selecting course")
	}
	return c, nil
}

func (repo courseRepository) CreateEnrollment(ctx context.Context, e course.Enrollment) (course.Enrollment, error) {
	q := `INSERT INTO enrollment (` + enrollmentColumns + `) VALUES (:user_id, :course_id, :amount_paid, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, e); err != nil {
		if isUniqueViolation(err) {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
		return course.Enrollment{}, wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo courseRepository) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	var e course.Enrollment
	q := `SELECT ` + enrollmentColumns + ` FROM enrollment WHERE user_id = $1 AND course_id = $2`
	if err := repo.db.GetContext(ctx, &e, q, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, wrap(err, "selecting enrollment")
	}
	return e, nil
}

func (repo courseRepository) QueryEnrollmentsByUser(ctx context.Context, userID string) ([]course.Enrollment, error) {
	enrollments := make([]course.Enrollment, 0)
	q := `SELECT ` + enrollmentColumns + ` FROM enrollment WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &enrollments, q, userID); err != nil {
		return nil, wrap(err, "selecting enrollments")
	}
	return enrollments, nil
}
