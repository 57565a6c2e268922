// Package session holds the identity of the user driving a client session.
//
// A Context is created when the application (or request) starts, updated on
// sign-in and sign-out, and passed explicitly to the components that depend
// on it instead of being read from global state.
package session

import (
	"strings"
	"sync"
)

type Role string

// Roles
const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleInstructor, RoleStudent}

// ParseRole returns the Role matching s, RoleNone when s is unknown.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, role := range AllRoles {
		if r == role {
			return role
		}
	}
	return RoleNone
}

func (r Role) String() string { return string(r) }

// Identity is the authenticated user of a session. The zero value is a guest.
type Identity struct {
	UserID      string `json:"user_id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

func (id Identity) IsAuthenticated() bool { return id.UserID != "" }

type Context struct {
	mu      sync.RWMutex
	current Identity
	subs    map[int]func(Identity)
	nextSub int

	signOutHook func(Identity)
}

// NewContext returns a Context initialized with id. Pass the zero Identity for a guest.
func NewContext(id Identity) *Context {
	return &Context{
		current: id,
		subs:    make(map[int]func(Identity)),
	}
}

// OnSignOut registers fn to be called with the identity being signed out.
func (c *Context) OnSignOut(fn func(Identity)) {
	c.mu.Lock()
	c.signOutHook = fn
	c.mu.Unlock()
}

func (c *Context) Current() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Context) SignIn(id Identity) {
	c.set(id)
}

// SignOut resets the session to a guest. It is a no-op for guests.
func (c *Context) SignOut() {
	c.mu.RLock()
	prev, hook := c.current, c.signOutHook
	c.mu.RUnlock()
	if !prev.IsAuthenticated() {
		return
	}
	c.set(Identity{})
	if hook != nil {
		hook(prev)
	}
}

// Subscribe registers fn to be called with the new identity after every change.
// The returned func removes the subscription; it is safe to call more than once.
func (c *Context) Subscribe(fn func(Identity)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Context) set(id Identity) {
	c.mu.Lock()
	c.current = id
	subs := make([]func(Identity), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	// subscribers may call back into the Context
	for _, fn := range subs {
		fn(id)
	}
}
