package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/learnhub/core"
)

type Course struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`
	InstructorID *string   `json:"instructor_id,omitempty" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

type Enrollment struct {
	UserID     string    `json:"user_id" db:"user_id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	AmountPaid float64   `json:"amount_paid" db:"amount_paid"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gt=0"`
	InstructorID string  `json:"instructor_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.InstructorID = core.CleanString(nc.InstructorID)
	return validate.Struct(nc)
}
