package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/session"
	"github.com/trezcool/learnhub/core/user"
	inmemdb "github.com/trezcool/learnhub/storage/database/inmem"
)

func newService() *user.Service {
	return user.NewService(inmemdb.NewUserRepository(inmemdb.Open()))
}

func TestService_CreateAndAuthenticate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	user.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { user.NowFunc = time.Now })

	ctx := context.Background()
	svc := newService()

	usr, err := svc.Create(ctx, user.NewUser{Name: "Ada", Email: "ada@learnhub.test", Password: "Gr8-Analytic$"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, session.RoleStudent, usr.Role)
	assert.True(t, usr.IsActive)
	assert.Equal(t, now, usr.CreatedAt)

	err = svc.CheckUniqueness("ada@learnhub.test")
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Fields[0].Field)
	assert.NoError(t, svc.CheckUniqueness("ada@learnhub.test", usr))

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "ok", email: " ADA@learnhub.test ", pwd: "Gr8-Analytic$"},
		{name: "wrong password", email: "ada@learnhub.test", pwd: "nope", wantErr: user.ErrAuthenticationFailed},
		{name: "unknown email", email: "grace@learnhub.test", pwd: "Gr8-Analytic$", wantErr: user.ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got.LastLogin)
			assert.Equal(t, now, *got.LastLogin)
		})
	}
}

func TestService_AddOrUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	created, err := svc.AddOrUpdate(ctx, "Grace", "Grace@learnhub.test", "Gr8-Analytic$", session.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, "grace@learnhub.test", created.Email)
	assert.Equal(t, session.RoleInstructor, created.Role)

	updated, err := svc.AddOrUpdate(ctx, "Grace Hopper", "grace@learnhub.test", "An0ther-Secret", session.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Grace Hopper", updated.Name)
	assert.Equal(t, session.RoleAdmin, updated.Role)

	_, err = svc.Authenticate(ctx, "grace@learnhub.test", "An0ther-Secret")
	assert.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "grace@learnhub.test", "Th1rd-Secret"))
	_, err = svc.Authenticate(ctx, "grace@learnhub.test", "Th1rd-Secret")
	assert.NoError(t, err)
	assert.Equal(t, user.ErrNotFound, svc.ResetPassword(ctx, "nobody@learnhub.test", "Th1rd-Secret"))
}

func TestService_DisplayName(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	usr, err := svc.Create(ctx, user.NewUser{Name: "Ada Lovelace", Email: "ada@learnhub.test", Password: "Gr8-Analytic$"})
	require.NoError(t, err)

	name, err := svc.DisplayName(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	_, err = svc.DisplayName(ctx, "missing")
	assert.Equal(t, user.ErrNotFound, err)
}
