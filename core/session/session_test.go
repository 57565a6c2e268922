package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{in: "admin", want: RoleAdmin},
		{in: " Instructor ", want: RoleInstructor},
		{in: "STUDENT", want: RoleStudent},
		{in: "tutor", want: RoleNone},
		{in: "", want: RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestContext_SubscribeSignInSignOut(t *testing.T) {
	c := NewContext(Identity{})
	assert.False(t, c.Current().IsAuthenticated())

	var seen []Identity
	unsubscribe := c.Subscribe(func(id Identity) { seen = append(seen, id) })

	var signedOut Identity
	c.OnSignOut(func(id Identity) { signedOut = id })

	alice := Identity{UserID: "u1", Role: RoleStudent}
	c.SignIn(alice)
	assert.Equal(t, alice, c.Current())

	c.SignOut()
	assert.Equal(t, Identity{}, c.Current())
	assert.Equal(t, alice, signedOut)

	// guests have nothing to sign out of
	c.SignOut()

	unsubscribe()
	unsubscribe()
	c.SignIn(alice)

	assert.Equal(t, []Identity{alice, {}}, seen)
}
