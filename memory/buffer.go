// Package memory owns raw typed storage: fixed-capacity slot buffers
// that know nothing about which slots hold live values.
package memory

import (
	"fmt"
	"unsafe"
)

// Buffer owns one allocation of Cap() slots. Slots not in use by the
// owner are kept at the zero value of T. A Buffer must not be copied;
// ownership moves with Exchange. go vet reports copies.
type Buffer[T any] struct {
	_ noCopy

	slots []T
	free  func()
}

// noCopy is picked up by the copylocks check of go vet.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Acquire allocates a buffer of n slots from a. A nil allocator means Heap.
// n == 0 never reaches the allocator. On error nothing is held.
func Acquire[T any](a Allocator[T], n int) (Buffer[T], error) {
	if n < 0 {
		panic(fmt.Sprintf("memory: negative capacity %d", n))
	}
	if n == 0 {
		return Buffer[T]{}, nil
	}
	if a == nil {
		a = Heap[T]()
	}

	slots, free, err := a.Allocate(n)
	if err != nil {
		usage.failed.Add(1)
		return Buffer[T]{}, fmt.Errorf("%w: acquire %d slots: %w", ErrAllocation, n, err)
	}
	if len(slots) < n {
		if free != nil {
			free()
		}
		usage.failed.Add(1)
		return Buffer[T]{}, fmt.Errorf("%w: acquire %d slots: got %d", ErrAllocation, n, len(slots))
	}
	if free == nil {
		free = func() {}
	}

	account(int64(n), size[T](n))
	return Buffer[T]{slots: slots[:n:n], free: free}, nil
}

func size[T any](n int) int64 {
	var zero T
	return int64(n) * int64(unsafe.Sizeof(zero))
}

// Cap is the number of slots.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// At returns the address of slot i.
func (b *Buffer[T]) At(i int) *T {
	if i < 0 || i >= len(b.slots) {
		panic(fmt.Sprintf("memory: slot %d out of range [0,%d)", i, len(b.slots)))
	}
	return &b.slots[i]
}

// Offset returns the slots from offset to the end of the buffer.
// offset may equal Cap().
func (b *Buffer[T]) Offset(offset int) []T {
	if offset < 0 || offset > len(b.slots) {
		panic(fmt.Sprintf("memory: offset %d out of range [0,%d]", offset, len(b.slots)))
	}
	return b.slots[offset:]
}

// Span returns slots [lo, hi).
func (b *Buffer[T]) Span(lo, hi int) []T {
	if lo < 0 || hi < lo || hi > len(b.slots) {
		panic(fmt.Sprintf("memory: span [%d,%d) out of range [0,%d]", lo, hi, len(b.slots)))
	}
	return b.slots[lo:hi:hi]
}

// Slots returns every slot of the buffer.
func (b *Buffer[T]) Slots() []T {
	return b.slots
}

// Exchange swaps the allocations held by b and o.
func (b *Buffer[T]) Exchange(o *Buffer[T]) {
	b.slots, o.slots = o.slots, b.slots
	b.free, o.free = o.free, b.free
}

// Release gives the allocation back. It is a no-op on an empty buffer.
func (b *Buffer[T]) Release() {
	if b.slots == nil {
		return
	}
	unaccount(int64(len(b.slots)), size[T](len(b.slots)))
	// drop references before the memory goes back
	clear(b.slots)
	free := b.free
	b.slots, b.free = nil, nil
	free()
}
