package course_test

import (
	"context"
	"net/mail"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
	inmemdb "github.com/trezcool/learnhub/storage/database/inmem"
)

type recordingMailer struct {
	mu   sync.Mutex
	msgs []*core.EmailMessage
}

func (m *recordingMailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, messages...)
}

func setup(t *testing.T) (*course.Service, *recordingMailer, course.Course) {
	t.Helper()
	mailer := new(recordingMailer)
	svc := course.NewService(inmemdb.NewCourseRepository(inmemdb.Open()), mailer)
	c, err := svc.Create(context.Background(), course.NewCourse{Title: "Go 101", Price: 49.99})
	require.NoError(t, err)
	return svc, mailer, c
}

func TestService_Enroll(t *testing.T) {
	ctx := context.Background()
	svc, mailer, c := setup(t)
	usr := user.User{ID: "u1", Name: "Ada", Email: "ada@learnhub.test"}

	enrolled, err := svc.IsEnrolled(ctx, usr.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	e, err := svc.Enroll(ctx, usr, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 49.99, e.AmountPaid)

	again, err := svc.Enroll(ctx, usr, c.ID)
	require.NoError(t, err)
	assert.Equal(t, e, again)

	enrolled, err = svc.IsEnrolled(ctx, usr.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	require.Len(t, mailer.msgs, 1)
	msg := mailer.msgs[0]
	assert.Equal(t, []mail.Address{{Name: "Ada", Address: "ada@learnhub.test"}}, msg.To)
	assert.Equal(t, "enrollment_confirmation", msg.TemplateName)
	assert.Equal(t, "You are enrolled in Go 101", msg.Subject)

	enrollments, err := svc.Enrollments(ctx, usr.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}

func TestService_EnrollErrors(t *testing.T) {
	ctx := context.Background()
	svc, mailer, c := setup(t)

	_, err := svc.Enroll(ctx, user.User{ID: "u1"}, "missing")
	assert.Equal(t, course.ErrNotFound, err)

	// no email, no confirmation
	_, err = svc.Enroll(ctx, user.User{ID: "u2"}, c.ID)
	require.NoError(t, err)
	assert.Empty(t, mailer.msgs)
}

func TestService_EnrollConcurrently(t *testing.T) {
	ctx := context.Background()
	svc, _, c := setup(t)
	usr := user.User{ID: "u1"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Enroll(ctx, usr, c.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	enrollments, err := svc.Enrollments(ctx, usr.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}
