package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/learnhub/core/course"
)

type courseRepository struct {
	courses     *courseTable
	enrollments *enrollmentTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{courses: db.course, enrollments: db.enrollment}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()
	repo.courses.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(context.Context) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]course.Course, 0, len(repo.courses.table))
	for _, c := range repo.courses.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if c, ok := repo.courses.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, e course.Enrollment) (course.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	key := enrollmentKey{userID: e.UserID, courseID: e.CourseID}
	if _, ok := repo.enrollments.table[key]; ok {
		return course.Enrollment{}, course.ErrAlreadyEnrolled
	}
	repo.enrollments.table[key] = &e
	return e, nil
}

func (repo *courseRepository) GetEnrollment(_ context.Context, userID, courseID string) (course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	if e, ok := repo.enrollments.table[enrollmentKey{userID: userID, courseID: courseID}]; ok {
		return *e, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) QueryEnrollmentsByUser(_ context.Context, userID string) ([]course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for key, e := range repo.enrollments.table {
		if key.userID == userID {
			enrollments = append(enrollments, *e)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}
