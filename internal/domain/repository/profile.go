// Package repository defines persistence ports for the domain layer.
package repository

import "context"

// ProfileStore is a profile-scoped key-value store. Values survive
// restarts within the same user profile but are not shared across
// machines. Implementations must be safe for concurrent use.
type ProfileStore interface {
	// Get retrieves the value stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Watcher is implemented by stores that can observe out-of-process
// changes to their backing storage (e.g. another window sharing the same
// profile file). fn fires after the stored value for key changed from a
// write this process did not perform.
type Watcher interface {
	// Watch starts observing key until stop is called or ctx is done.
	Watch(ctx context.Context, key string, fn func()) (stop func(), err error)
}
