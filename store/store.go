package store

import (
	"context"
)

// Storage is a string key-value store. A missing key is not an error:
// Get reports it through the boolean. Implementations are safe for
// concurrent use and write each value atomically.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends with a remote connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
