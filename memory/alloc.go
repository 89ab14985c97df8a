package memory

import (
	"errors"
	"fmt"
)

// ErrAllocation is returned when an allocator cannot provide the requested slots.
var ErrAllocation = errors.New("memory: allocation failed")

// Allocator hands out zeroed slot slices of exactly n elements together
// with the function that gives them back.
type Allocator[T any] interface {
	Allocate(n int) ([]T, func(), error)
}

// Heap returns an allocator backed by the Go heap.
func Heap[T any]() Allocator[T] {
	return heap[T]{}
}

type heap[T any] struct{}

// Allocate is ...
func (heap[T]) Allocate(n int) ([]T, func(), error) {
	return make([]T, n), func() {}, nil
}

// Limit wraps a with a budget of live slots. Allocations that would go
// over the budget fail without reaching a.
func Limit[T any](a Allocator[T], slots int) Allocator[T] {
	if a == nil {
		a = Heap[T]()
	}
	return &limit[T]{Allocator: a, max: slots}
}

type limit[T any] struct {
	Allocator[T]
	max  int
	used int
}

// Allocate is ...
func (l *limit[T]) Allocate(n int) ([]T, func(), error) {
	if l.used+n > l.max {
		return nil, nil, fmt.Errorf("limit of %d slots exceeded: %d in use, %d requested", l.max, l.used, n)
	}
	b, free, err := l.Allocator.Allocate(n)
	if err != nil {
		return nil, nil, err
	}
	l.used += n
	return b, func() {
		l.used -= n
		free()
	}, nil
}

// InUse reports the slots currently held through a Limit allocator.
func InUse[T any](a Allocator[T]) int {
	if l, ok := a.(*limit[T]); ok {
		return l.used
	}
	return 0
}
