// Package arena implements a fixed capacity append buffer that many goroutines
// can write to concurrently. Writers reserve contiguous ranges with a single
// atomic add and then own the reserved slots exclusively.
package arena

import (
	"fmt"
	"sync/atomic"
)

// Buffer is a fixed capacity append buffer with an atomic bump counter.
// The zero value has no capacity.
type Buffer[T any] struct {
	buf []T
	n   atomic.Int64
}

// New returns a Buffer able to hold capacity elements.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		panic("bug: negative arena capacity")
	}
	return &Buffer[T]{buf: make([]T, capacity)}
}

// Reserve claims k consecutive slots and returns them. The returned slice
// aliases the buffer and is owned by the caller until Reset.
// Reserve panics if the buffer capacity would be exceeded.
func (b *Buffer[T]) Reserve(k int) []T {
	if k <= 0 {
		return nil
	}
	end := b.n.Add(int64(k))
	if end > int64(len(b.buf)) {
		panic(fmt.Sprintf("bug: arena overflow reserving %d slots, capacity %d", k, len(b.buf)))
	}
	start := end - int64(k)
	return b.buf[start:end:end]
}

// Len returns the number of reserved slots. It is only meaningful once all
// writers are done.
func (b *Buffer[T]) Len() int { return int(b.n.Load()) }

// Cap returns the fixed capacity of the buffer.
func (b *Buffer[T]) Cap() int { return len(b.buf) }

// Valid returns the reserved portion of the buffer. Must not be called while
// writers are active.
func (b *Buffer[T]) Valid() []T {
	return b.buf[:b.Len()]
}

// Reset sets the counter back to zero so the storage can be reused.
// Previously reserved slots are not cleared.
func (b *Buffer[T]) Reset() {
	b.n.Store(0)
}

// Release drops the underlying storage. The buffer has zero capacity afterwards.
func (b *Buffer[T]) Release() {
	b.buf = nil
	b.n.Store(0)
}
