// Package navbar builds the site navigation of a client session.
package navbar

import (
	"context"
	"sync"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/profile"
	"github.com/trezcool/learnhub/core/session"
)

// Paths
const (
	PathHome                = "/"
	PathCourses             = "/courses"
	PathAdminDashboard      = "/dashboard/admin"
	PathInstructorDashboard = "/dashboard/instructor"
	PathStudentDashboard    = "/dashboard/student"
	PathMessages            = "/messages"
	PathLogin               = "/auth/login"
	PathRegister            = "/auth/register"
)

const (
	Brand               = "LearnHub"
	DefaultAccountLabel = "My Account"
)

// DashboardPath returns the dashboard of role, the home page for guests and unknown roles.
func DashboardPath(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return PathAdminDashboard
	case session.RoleInstructor:
		return PathInstructorDashboard
	case session.RoleStudent:
		return PathStudentDashboard
	default:
		return PathHome
	}
}

type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Bar is the navigation bar of one client session.
// It follows the session.Context between Start and Close, refreshing the profile display name on every user change.
type Bar struct {
	sess     *session.Context
	profiles profile.Store
	nav      Navigator
	logger   core.Logger

	mu           sync.Mutex
	identity     session.Identity
	displayName  string
	mobileOpen   bool
	started      bool
	closed       bool
	generation   uint64
	cancelLookup context.CancelFunc
	baseCtx      context.Context
	unsubscribe  func()
	lookups      sync.WaitGroup
}

func New(sess *session.Context, profiles profile.Store, nav Navigator, logger core.Logger) *Bar {
	return &Bar{
		sess:     sess,
		profiles: profiles,
		nav:      nav,
		logger:   logger,
	}
}

// Start mounts the Bar: it subscribes to the session and looks up the display name of the current user.
// Lookups run under ctx; cancelling it has the same effect as Close on pending lookups.
func (b *Bar) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started || b.closed {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.baseCtx = ctx
	b.mu.Unlock()

	unsubscribe := b.sess.Subscribe(b.identityChanged)

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	b.identityChanged(b.sess.Current())
}

// Close unmounts the Bar, cancelling any pending lookup. It waits for lookups to return.
func (b *Bar) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.generation++
	if b.cancelLookup != nil {
		b.cancelLookup()
		b.cancelLookup = nil
	}
	unsubscribe := b.unsubscribe
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	b.lookups.Wait()
}

// Wait blocks until pending display name lookups have returned.
func (b *Bar) Wait() {
	b.lookups.Wait()
}

func (b *Bar) identityChanged(id session.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	sameUser := b.identity.UserID == id.UserID
	b.identity = id
	if sameUser && b.generation > 0 {
		return
	}

	// supersede the pending lookup
	b.generation++
	if b.cancelLookup != nil {
		b.cancelLookup()
		b.cancelLookup = nil
	}
	b.displayName = ""
	if !id.IsAuthenticated() {
		return
	}

	ctx, cancel := context.WithCancel(b.baseCtx)
	b.cancelLookup = cancel
	b.lookups.Add(1)
	go b.lookup(ctx, b.generation, id.UserID)
}

func (b *Bar) lookup(ctx context.Context, generation uint64, userID string) {
	defer b.lookups.Done()

	name, err := b.profiles.DisplayName(ctx, userID)
	if err != nil {
		// the name is decorative: leave it blank
		b.logger.Debug("looking up profile display name", err, map[string]interface{}{"user_id": userID})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || generation != b.generation || b.identity.UserID != userID {
		return
	}
	b.displayName = name
}

// Identity returns the current identity, its DisplayName set to the looked up profile name.
func (b *Bar) Identity() session.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.identity
	id.DisplayName = b.displayName
	return id
}

func (b *Bar) DisplayName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displayName
}

func (b *Bar) DashboardPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return DashboardPath(b.identity.Role)
}

func (b *Bar) MobileMenuOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mobileOpen
}

// ToggleMobileMenu flips the mobile menu and returns its new state.
func (b *Bar) ToggleMobileMenu() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mobileOpen = !b.mobileOpen
	return b.mobileOpen
}

// Navigate closes the mobile menu and goes to path.
func (b *Bar) Navigate(path string) {
	b.mu.Lock()
	b.mobileOpen = false
	b.mu.Unlock()
	b.nav.Navigate(path)
}

// SignOut closes the mobile menu and signs the session out.
func (b *Bar) SignOut() {
	b.mu.Lock()
	b.mobileOpen = false
	b.mu.Unlock()
	b.sess.SignOut()
}
