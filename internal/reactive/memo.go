// Package reactive provides a memoized computation cell: a value derived from
// an input key that is recomputed only when the key changes.
package reactive

import (
	"context"
	"sync"
)

// ComputeFunc derives a value from a key.
type ComputeFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Memo caches the result of one computation for the most recent key.
// Get with the same key returns the cached value; a different key, or a call
// after Invalidate, runs the computation again. Errors are not cached.
// Memo is safe for concurrent use; concurrent callers with the same key
// share one computation.
type Memo[K comparable, V any] struct {
	compute ComputeFunc[K, V]

	mu    sync.Mutex
	key   K
	value V
	valid bool
	runs  int
}

// NewMemo creates a cell around compute.
func NewMemo[K comparable, V any](compute ComputeFunc[K, V]) *Memo[K, V] {
	return &Memo[K, V]{compute: compute}
}

// Get returns the value for key, computing it if the cached key differs.
func (m *Memo[K, V]) Get(ctx context.Context, key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.key == key {
		return m.value, nil
	}

	m.runs++
	v, err := m.compute(ctx, key)
	if err != nil {
		m.valid = false
		var zero V
		return zero, err
	}
	m.key, m.value, m.valid = key, v, true
	return v, nil
}

// Peek returns the cached value without computing. ok is false when nothing
// is cached.
func (m *Memo[K, V]) Peek() (key K, value V, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, m.value, m.valid
}

// Invalidate drops the cached value; the next Get recomputes.
func (m *Memo[K, V]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero V
	m.value, m.valid = zero, false
}

// Runs returns how many times the computation has been invoked.
func (m *Memo[K, V]) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}
