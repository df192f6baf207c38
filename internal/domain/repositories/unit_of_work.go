package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations.
type UnitOfWork interface {
	// Do executes the given function within a transaction scope.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks the context so that subsequent single-row reads inside
	// the transaction take a SELECT ... FOR UPDATE lock.
	WithLock(ctx context.Context) context.Context
}
