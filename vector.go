// Package vector implements a growable array over raw storage from
// package memory. Element construction, destruction and relocation are
// driven by the vector itself, using the hooks an element type opts into
// (Initializer, Copier, Mover, Destroyer, NonCopyable).
//
// Operations that reallocate or reassign are all-or-nothing: if they
// return an error, the length, capacity and element values are those from
// before the call. Index and range violations panic.
//
// A Vector is not safe for concurrent use.
package vector

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/imgk/vector-go/memory"
)

// Vector is a contiguous sequence of T. The zero value is an empty vector
// using the heap allocator.
type Vector[T any] struct {
	data memory.Buffer[T]
	size int

	elem  *element[T]
	alloc memory.Allocator[T]
	lg    *zap.Logger
}

// New returns an empty vector.
func New[T any](opts ...Option[T]) *Vector[T] {
	v := &Vector[T]{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewSized returns a vector of n default elements.
func NewSized[T any](n int, opts ...Option[T]) (*Vector[T], error) {
	if n < 0 {
		panic(fmt.Sprintf("vector: negative size %d", n))
	}
	v := New(opts...)
	data, err := memory.Acquire(v.alloc, n)
	if err != nil {
		return nil, err
	}
	if err := v.element().initAll(data.Span(0, n)); err != nil {
		data.Release()
		return nil, err
	}
	v.data.Exchange(&data)
	v.size = n
	return v, nil
}

func (v *Vector[T]) element() *element[T] {
	if v.elem == nil {
		v.elem = elementOf[T]()
	}
	return v.elem
}

func (v *Vector[T]) logger() *zap.Logger {
	if v.lg == nil {
		v.lg = zap.NewNop()
	}
	return v.lg
}

// Len is the number of elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap is the number of slots available before the next reallocation.
func (v *Vector[T]) Cap() int {
	return v.data.Cap()
}

// At returns the address of element i. The address stays valid until the
// next operation that reallocates or shifts elements.
func (v *Vector[T]) At(i int) *T {
	if i < 0 || i >= v.size {
		panic(fmt.Sprintf("vector: index %d out of range [0,%d)", i, v.size))
	}
	return v.data.At(i)
}

// Get returns a copy of element i as plain assignment would make it.
func (v *Vector[T]) Get(i int) T {
	return *v.At(i)
}

// Slice returns the live elements. It shares memory with the vector.
func (v *Vector[T]) Slice() []T {
	return v.data.Span(0, v.size)
}

// All iterates over the live elements front to back.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, *v.data.At(i)) {
				return
			}
		}
	}
}

// Backward iterates over the live elements back to front.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := v.size - 1; i >= 0; i-- {
			if !yield(i, *v.data.At(i)) {
				return
			}
		}
	}
}

// Swap exchanges the contents of v and o.
func (v *Vector[T]) Swap(o *Vector[T]) {
	v.data.Exchange(&o.data)
	v.size, o.size = o.size, v.size
}

// Free destroys every element and releases the storage. The vector stays
// usable and empty.
func (v *Vector[T]) Free() {
	v.element().destroyAll(v.data.Span(0, v.size))
	v.size = 0
	v.data.Release()
}

// Take moves the contents of v into a new vector with the same options
// and leaves v empty.
func (v *Vector[T]) Take() *Vector[T] {
	o := &Vector[T]{elem: v.elem, alloc: v.alloc, lg: v.lg}
	o.Swap(v)
	return o
}

// Clone returns an element-wise copy of v with capacity equal to its length.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	o := &Vector[T]{elem: v.elem, alloc: v.alloc, lg: v.lg}
	if err := o.copyFrom(v, v.size); err != nil {
		return nil, err
	}
	return o, nil
}

// copyFrom fills the empty vector v with copies of src in new storage of
// n slots, n >= src.Len().
func (v *Vector[T]) copyFrom(src *Vector[T], n int) error {
	e := v.element()
	if e.noCopy && src.size > 0 {
		return ErrNotCopyable
	}
	data, err := memory.Acquire(v.alloc, n)
	if err != nil {
		return err
	}
	if err := e.copyAll(data.Span(0, src.size), src.Slice()); err != nil {
		data.Release()
		return err
	}
	v.data.Exchange(&data)
	data.Release()
	v.size = src.size
	return nil
}

// Assign replaces the contents of v with copies of the elements of src.
// Existing slots are reused when the copy cannot fail and fits in the
// current capacity; otherwise a full copy is built first and swapped in.
// Either way the capacity never shrinks.
func (v *Vector[T]) Assign(src *Vector[T]) error {
	if v == src {
		return nil
	}
	e := v.element()
	if e.noCopy && src.size > 0 {
		return ErrNotCopyable
	}

	if src.size > v.Cap() || e.copy {
		tmp := &Vector[T]{elem: e, alloc: v.alloc, lg: v.lg}
		if err := tmp.copyFrom(src, max(v.Cap(), src.size)); err != nil {
			return err
		}
		v.Swap(tmp)
		tmp.Free()
		return nil
	}

	n := min(v.size, src.size)
	for i := range n {
		e.destroyAt(v.data.At(i))
		*v.data.At(i) = *src.data.At(i)
	}
	if v.size < src.size {
		copy(v.data.Span(v.size, src.size), src.data.Span(v.size, src.size))
	} else {
		e.destroyAll(v.data.Span(src.size, v.size))
	}
	v.size = src.size
	return nil
}

// AssignMove destroys the contents of v and moves the contents of src in.
// src ends empty.
func (v *Vector[T]) AssignMove(src *Vector[T]) {
	if v == src {
		return
	}
	v.Free()
	v.Swap(src)
}

// grow moves the elements into new storage of n slots, opening a gap of
// k slots at pos. fill constructs the gap before any element is touched,
// so a failing fill leaves v as it was.
func (v *Vector[T]) grow(n, pos, k int, fill func([]T) error) error {
	e := v.element()

	data, err := memory.Acquire(v.alloc, n)
	if err != nil {
		v.logger().Debug("vector growth failed", zap.Int("new_cap", n), zap.Error(err))
		return err
	}

	gap := data.Span(pos, pos+k)
	if fill != nil {
		if err := fill(gap); err != nil {
			data.Release()
			return err
		}
	}

	old := v.data.Span(0, v.size)
	if err := e.relocate(data.Span(0, pos), old[:pos]); err != nil {
		e.destroyAll(gap)
		data.Release()
		v.logger().Debug("vector growth failed", zap.Int("new_cap", n), zap.Error(err))
		return err
	}
	if err := e.relocate(data.Span(pos+k, v.size+k), old[pos:]); err != nil {
		if er := e.unrelocate(data.Span(0, pos), old[:pos]); er != nil {
			err = fmt.Errorf("%w (rollback: %w)", err, er)
		}
		e.destroyAll(gap)
		data.Release()
		v.logger().Debug("vector growth failed", zap.Int("new_cap", n), zap.Error(err))
		return err
	}
	if !e.moves() {
		e.destroyAll(old)
	}

	v.logger().Debug("vector storage grown",
		zap.Int("old_cap", v.data.Cap()),
		zap.Int("new_cap", n),
		zap.Int("len", v.size),
	)
	v.data.Exchange(&data)
	data.Release()
	return nil
}

// Reserve makes room for at least n elements. It never shrinks.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.Cap() {
		return nil
	}
	return v.grow(n, v.size, 0, nil)
}

// Resize sets the length to n. New elements are default elements;
// elements past n are destroyed.
func (v *Vector[T]) Resize(n int) error {
	if n < 0 {
		panic(fmt.Sprintf("vector: negative size %d", n))
	}
	e := v.element()
	switch {
	case n > v.Cap():
		if err := v.grow(n, v.size, n-v.size, e.initAll); err != nil {
			return err
		}
	case n > v.size:
		if err := e.initAll(v.data.Span(v.size, n)); err != nil {
			return err
		}
	case n < v.size:
		e.destroyAll(v.data.Span(n, v.size))
	}
	v.size = n
	return nil
}

// one adapts a single slot constructor to a gap filler.
func one[T any](construct func(*T) error) func([]T) error {
	return func(s []T) error {
		return construct(&s[0])
	}
}

// place runs construct on the empty slot p and clears p if it fails.
func place[T any](p *T, construct func(*T) error) error {
	if err := construct(p); err != nil {
		var zero T
		*p = zero
		return err
	}
	return nil
}

// EmplaceBack constructs a new last element in place and returns it.
// construct receives a slot holding the zero value.
func (v *Vector[T]) EmplaceBack(construct func(*T) error) (*T, error) {
	if v.size == v.Cap() {
		fill := func(p *T) error { return place(p, construct) }
		if err := v.grow(max(1, 2*v.Cap()), v.size, 1, one(fill)); err != nil {
			return nil, err
		}
	} else if err := place(v.data.At(v.size), construct); err != nil {
		return nil, err
	}
	v.size++
	return v.data.At(v.size - 1), nil
}

// PushBack appends x, taking ownership of it.
func (v *Vector[T]) PushBack(x T) error {
	_, err := v.EmplaceBack(func(p *T) error {
		*p = x
		return nil
	})
	return err
}

// PushBackCopy appends a copy of *src. src may point into v.
func (v *Vector[T]) PushBackCopy(src *T) error {
	e := v.element()
	_, err := v.EmplaceBack(func(p *T) error {
		return e.copyTo(src, p)
	})
	return err
}

// PopBack destroys the last element.
func (v *Vector[T]) PopBack() {
	if v.size == 0 {
		panic("vector: PopBack on empty vector")
	}
	v.element().destroyAt(v.data.At(v.size - 1))
	v.size--
}

// Emplace constructs a new element in place before index pos and returns
// it. pos may equal Len().
func (v *Vector[T]) Emplace(pos int, construct func(*T) error) (*T, error) {
	if pos < 0 || pos > v.size {
		panic(fmt.Sprintf("vector: insert position %d out of range [0,%d]", pos, v.size))
	}
	if pos == v.size {
		return v.EmplaceBack(construct)
	}

	e := v.element()
	if v.size < v.Cap() {
		var tmp T
		if err := place(&tmp, construct); err != nil {
			return nil, err
		}
		for i := v.size; i > pos; i-- {
			e.shift(v.data.At(i-1), v.data.At(i))
		}
		e.shift(&tmp, v.data.At(pos))
	} else {
		fill := func(p *T) error { return place(p, construct) }
		if err := v.grow(2*v.size, pos, 1, one(fill)); err != nil {
			return nil, err
		}
	}
	v.size++
	return v.data.At(pos), nil
}

// Insert puts x before index pos, taking ownership of it, and returns pos.
func (v *Vector[T]) Insert(pos int, x T) (int, error) {
	_, err := v.Emplace(pos, func(p *T) error {
		*p = x
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pos, nil
}

// InsertCopy puts a copy of *src before index pos and returns pos. src
// may point into v.
func (v *Vector[T]) InsertCopy(pos int, src *T) (int, error) {
	e := v.element()
	_, err := v.Emplace(pos, func(p *T) error {
		return e.copyTo(src, p)
	})
	if err != nil {
		return 0, err
	}
	return pos, nil
}

// Erase destroys element pos and closes the gap. It returns pos, which now
// holds the following element or equals Len().
func (v *Vector[T]) Erase(pos int) int {
	if pos < 0 || pos >= v.size {
		panic(fmt.Sprintf("vector: erase position %d out of range [0,%d)", pos, v.size))
	}
	e := v.element()
	e.destroyAt(v.data.At(pos))
	for i := pos + 1; i < v.size; i++ {
		e.shift(v.data.At(i), v.data.At(i-1))
	}
	v.size--
	return pos
}
