package course

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		QueryEnrollmentsByUser(ctx context.Context, userID string) ([]Enrollment, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	c := Course{
		ID:          uuid.New().String(),
		Title:       nc.Title,
		Description: nc.Description,
		Price:       nc.Price,
		CreatedAt:   NowFunc().UTC(),
	}
	if nc.InstructorID != "" {
		c.InstructorID = &nc.InstructorID
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	switch _, err := svc.repo.GetEnrollment(ctx, userID, courseID); err {
	case nil:
		return true, nil
	case ErrEnrollmentNotFound:
		return false, nil
	default:
		return false, err
	}
}

// Enroll registers usr in the course and mails them a confirmation.
// Enrolling twice returns the existing Enrollment.
func (svc *Service) Enroll(ctx context.Context, usr user.User, courseID string) (Enrollment, error) {
	c, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}

	e, err := svc.repo.GetEnrollment(ctx, usr.ID, c.ID)
	if err == nil {
		return e, nil
	} else if err != ErrEnrollmentNotFound {
		return Enrollment{}, err
	}

	e, err = svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:     usr.ID,
		CourseID:   c.ID,
		AmountPaid: c.Price,
		CreatedAt:  NowFunc().UTC(),
	})
	if err == ErrAlreadyEnrolled {
		// lost a race with a concurrent enrollment
		return svc.repo.GetEnrollment(ctx, usr.ID, c.ID)
	} else if err != nil {
		return Enrollment{}, err
	}

	if usr.Email != "" {
		svc.mailSvc.SendMessages(enrollmentConfirmation(usr, c))
	}
	return e, nil
}

func (svc *Service) Enrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByUser(ctx, userID)
}

func enrollmentConfirmation(usr user.User, c Course) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "You are enrolled in " + c.Title,
		TemplateName: "enrollment_confirmation",
		TemplateData: map[string]interface{}{
			"Name":        usr.Name,
			"CourseID":    c.ID,
			"CourseTitle": c.Title,
		},
	}
}
