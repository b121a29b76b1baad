// Package lock serialises work per key (one chat session at a time).
package lock

import "context"

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

// Locker grants exclusive access to a key until the returned Unlock is called
// or ctx is done while waiting.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}
