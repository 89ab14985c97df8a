package vector

import (
	"go.uber.org/zap"

	"github.com/imgk/vector-go/memory"
)

// Option is ...
type Option[T any] func(*Vector[T])

// WithAllocator sets where the vector gets its storage from.
func WithAllocator[T any](a memory.Allocator[T]) Option[T] {
	return func(v *Vector[T]) {
		v.alloc = a
	}
}

// WithLogger sets the logger reallocations are reported to at debug level.
func WithLogger[T any](lg *zap.Logger) Option[T] {
	return func(v *Vector[T]) {
		v.lg = lg
	}
}

// From returns a vector holding values in order.
func From[T any](values []T, opts ...Option[T]) (*Vector[T], error) {
	v := New(opts...)
	if err := v.Reserve(len(values)); err != nil {
		return nil, err
	}
	for _, x := range values {
		if err := v.PushBack(x); err != nil {
			v.Free()
			return nil, err
		}
	}
	return v, nil
}

// Equal reports whether a and b hold equal elements in the same order.
func Equal[T comparable](a, b *Vector[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if a.Get(i) != b.Get(i) {
			return false
		}
	}
	return true
}
