// Package profile defines the read-only profile lookup used to decorate navigation.
package profile

import "context"

// Store looks up the display name of a user. An empty name with a nil error means the user has none.
type Store interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// StoreFunc adapts a function to a Store.
type StoreFunc func(ctx context.Context, userID string) (string, error)

func (f StoreFunc) DisplayName(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}
