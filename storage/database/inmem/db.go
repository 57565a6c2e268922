package inmemdb

import (
	"sync"

	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		enrollment *enrollmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	enrollmentKey struct {
		userID, courseID string
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[enrollmentKey]*course.Enrollment
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[enrollmentKey]*course.Enrollment)},
	}
}
