// Package cache provides in-process read-through caching for list and
// archive reads. Every cached view is invalidated synchronously within the
// mutating call that made it stale; a stale read after a committed mutation
// is a correctness bug, not an acceptable race.
package cache

import (
	"context"
	"sync"
)

// Snapshot is a single-value read-through cache. The zero value is ready to
// use and starts empty.
type Snapshot[T any] struct {
	mu    sync.Mutex
	valid bool
	value T
}

// Load returns the cached value, filling it via fill on a miss. The fill
// runs under the lock so concurrent readers observe one fill, and a fill
// error leaves the cache empty.
func (s *Snapshot[T]) Load(ctx context.Context, fill func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid {
		return s.value, nil
	}

	value, err := fill(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.value = value
	s.valid = true
	return value, nil
}

// Invalidate drops the cached value.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	s.valid = false
	var zero T
	s.value = zero
	s.mu.Unlock()
}
