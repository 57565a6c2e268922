package navbar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/learnhub/core/profile"
	"github.com/trezcool/learnhub/core/session"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) { n.paths = append(n.paths, path) }

func names(m map[string]string) profile.Store {
	return profile.StoreFunc(func(_ context.Context, userID string) (string, error) {
		return m[userID], nil
	})
}

func setup(t *testing.T, id session.Identity, store profile.Store) (*Bar, *session.Context, *recordingNavigator) {
	sess := session.NewContext(id)
	nav := new(recordingNavigator)
	bar := New(sess, store, nav, nopLogger{})
	bar.Start(context.Background())
	t.Cleanup(bar.Close)
	bar.Wait()
	return bar, sess, nav
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role session.Role
		want string
	}{
		{role: session.RoleAdmin, want: "/dashboard/admin"},
		{role: session.RoleInstructor, want: "/dashboard/instructor"},
		{role: session.RoleStudent, want: "/dashboard/student"},
		{role: session.RoleNone, want: "/"},
		{role: session.Role("tutor"), want: "/"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardPath(tt.role))
		})
	}
}

func TestBar_GuestView(t *testing.T) {
	bar, _, _ := setup(t, session.Identity{}, names(nil))

	v := bar.View()
	assert.False(t, v.Authenticated)
	assert.Nil(t, v.Account)
	assert.Equal(t, "/", v.DashboardPath)
	assert.Equal(t, []Link{{Label: "Courses", Path: "/courses"}}, v.Links)
	assert.Equal(t, []Action{
		{ID: ActionLogin, Label: "Login", Path: "/auth/login"},
		{ID: ActionRegister, Label: "Get Started", Path: "/auth/register"},
	}, v.GuestActions)
	assert.Empty(t, v.MobileItems)
	assert.Empty(t, v.Toolbar)
}

func TestBar_AuthenticatedView(t *testing.T) {
	bar, _, _ := setup(t,
		session.Identity{UserID: "u1", Role: session.RoleInstructor},
		names(map[string]string{"u1": "Ada Lovelace"}),
	)

	v := bar.View()
	assert.True(t, v.Authenticated)
	assert.Equal(t, "/dashboard/instructor", v.DashboardPath)
	assert.Empty(t, v.GuestActions)
	assert.Equal(t, []Link{{Label: "Courses", Path: "/courses"}, {Label: "Dashboard", Path: "/dashboard/instructor"}}, v.Links)
	require.NotNil(t, v.Account)
	assert.Equal(t, "Ada Lovelace", v.Account.Label)
	assert.Equal(t, []Action{
		{ID: ActionDashboard, Label: "Dashboard", Path: "/dashboard/instructor"},
		{ID: ActionMessages, Label: "Messages", Path: "/messages"},
		{ID: ActionSignOut, Label: "Sign Out"},
	}, v.Account.Items)
	assert.Equal(t, "Ada Lovelace", bar.Identity().DisplayName)
	assert.Equal(t, []Action{
		{ID: ActionNotifications, Label: "Notifications"},
		{ID: ActionMessages, Label: "Messages", Path: "/messages"},
	}, v.Toolbar)
	assert.False(t, bar.Activate(ActionNotifications))
}

func TestBar_DisplayNameFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		store profile.Store
	}{
		{name: "no name", store: names(map[string]string{})},
		{
			name: "lookup error",
			store: profile.StoreFunc(func(context.Context, string) (string, error) {
				return "", errors.New("profile store down")
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, _, _ := setup(t, session.Identity{UserID: "u1", Role: session.RoleStudent}, tt.store)
			assert.Equal(t, "", bar.DisplayName())
			assert.Equal(t, DefaultAccountLabel, bar.View().Account.Label)
		})
	}
}

func TestBar_MobileMenu(t *testing.T) {
	bar, sess, nav := setup(t,
		session.Identity{UserID: "u1", Role: session.RoleStudent},
		names(map[string]string{"u1": "Grace"}),
	)

	assert.False(t, bar.MobileMenuOpen())
	assert.True(t, bar.ToggleMobileMenu())
	v := bar.View()
	assert.True(t, v.MobileOpen)
	assert.Equal(t, []string{ActionCourses, ActionDashboard, ActionMessages, ActionSignOut}, actionIDs(v.MobileItems))

	assert.True(t, bar.Activate(ActionDashboard))
	assert.False(t, bar.MobileMenuOpen())
	assert.Equal(t, []string{"/dashboard/student"}, nav.paths)

	bar.ToggleMobileMenu()
	assert.False(t, bar.ToggleMobileMenu())

	bar.ToggleMobileMenu()
	assert.True(t, bar.Activate(ActionSignOut))
	assert.False(t, bar.MobileMenuOpen())
	assert.False(t, sess.Current().IsAuthenticated())
	assert.Equal(t, "", bar.DisplayName())

	bar.ToggleMobileMenu()
	assert.Equal(t, []string{ActionCourses, ActionLogin, ActionRegister}, actionIDs(bar.View().MobileItems))
	assert.False(t, bar.Activate("unknown"))
}

func TestBar_FollowsSession(t *testing.T) {
	bar, sess, _ := setup(t, session.Identity{}, names(map[string]string{"u1": "Ada", "u2": "Grace"}))
	assert.Nil(t, bar.View().Account)

	sess.SignIn(session.Identity{UserID: "u1", Role: session.RoleAdmin})
	bar.Wait()
	assert.Equal(t, "Ada", bar.DisplayName())
	assert.Equal(t, "/dashboard/admin", bar.DashboardPath())

	sess.SignIn(session.Identity{UserID: "u2", Role: session.RoleStudent})
	bar.Wait()
	assert.Equal(t, "Grace", bar.DisplayName())
	assert.Equal(t, "/dashboard/student", bar.DashboardPath())
}

// blockingStore answers lookups only once released.
type blockingStore struct {
	mu      sync.Mutex
	release map[string]chan struct{}
	names   map[string]string
}

func (s *blockingStore) gate(userID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.release[userID]
	if !ok {
		ch = make(chan struct{})
		s.release[userID] = ch
	}
	return ch
}

func (s *blockingStore) DisplayName(ctx context.Context, userID string) (string, error) {
	<-s.gate(userID)
	// answer even when cancelled, like a backend that ignores cancellation
	return s.names[userID], nil
}

func TestBar_DiscardsStaleLookups(t *testing.T) {
	store := &blockingStore{
		release: make(map[string]chan struct{}),
		names:   map[string]string{"u1": "Ada", "u2": "Grace"},
	}
	bar, sess, _ := setup(t, session.Identity{}, store)

	sess.SignIn(session.Identity{UserID: "u1", Role: session.RoleStudent})
	sess.SignIn(session.Identity{UserID: "u2", Role: session.RoleStudent})

	close(store.gate("u2"))
	assert.Eventually(t, func() bool { return bar.DisplayName() == "Grace" }, time.Second, time.Millisecond)

	// u1's answer arrives last and must not overwrite u2's name
	close(store.gate("u1"))
	bar.Wait()
	assert.Equal(t, "Grace", bar.DisplayName())
}

func TestBar_CloseCancelsLookup(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	store := profile.StoreFunc(func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	})

	sess := session.NewContext(session.Identity{UserID: "u1", Role: session.RoleStudent})
	bar := New(sess, store, new(recordingNavigator), nopLogger{})
	bar.Start(context.Background())
	<-started

	bar.Close()
	<-cancelled
	assert.Equal(t, "", bar.DisplayName())

	// a closed bar no longer follows the session
	sess.SignIn(session.Identity{UserID: "u2"})
	assert.Equal(t, "u1", bar.Identity().UserID)
}

func actionIDs(actions []Action) []string {
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.ID)
	}
	return ids
}
