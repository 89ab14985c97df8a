package memory

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing[T any] struct{ err error }

func (f failing[T]) Allocate(int) ([]T, func(), error) {
	return nil, nil, f.err
}

type short[T any] struct{ freed *int }

func (s short[T]) Allocate(n int) ([]T, func(), error) {
	return make([]T, n-1), func() { *s.freed++ }, nil
}

func TestAcquireZero(t *testing.T) {
	before := Usage()

	b, err := Acquire[int](failing[int]{err: errors.New("must not be called")}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Cap())
	assert.Nil(t, b.Slots())
	assert.Empty(t, b.Offset(0))
	assert.Empty(t, b.Span(0, 0))

	b.Release()
	assert.Equal(t, before, Usage())
}

func TestAcquireNegative(t *testing.T) {
	assert.Panics(t, func() { Acquire[int](nil, -1) })
}

func TestAcquireRelease(t *testing.T) {
	before := Usage()

	b, err := Acquire[int64](nil, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, b.Cap())
	for _, v := range b.Slots() {
		assert.Zero(t, v)
	}

	during := Usage()
	assert.Equal(t, before.Buffers+1, during.Buffers)
	assert.Equal(t, before.Slots+8, during.Slots)
	assert.Equal(t, before.Bytes+64, during.Bytes)
	assert.Equal(t, before.Acquired+1, during.Acquired)

	b.Release()
	after := Usage()
	assert.Equal(t, before.Buffers, after.Buffers)
	assert.Equal(t, before.Slots, after.Slots)
	assert.Equal(t, before.Bytes, after.Bytes)
	assert.Equal(t, before.Released+1, after.Released)
	assert.Equal(t, 0, b.Cap())

	// second release is a no-op
	b.Release()
	assert.Equal(t, after, Usage())
}

func TestAcquireFailure(t *testing.T) {
	before := Usage()
	cause := errors.New("out of pages")

	b, err := Acquire[string](failing[string]{err: cause}, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, b.Cap())
	assert.Equal(t, before.Failed+1, Usage().Failed)
	assert.Equal(t, before.Buffers, Usage().Buffers)
}

func TestAcquireShort(t *testing.T) {
	freed := 0
	_, err := Acquire[int](short[int]{freed: &freed}, 4)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, 1, freed)
}

func TestSlotAccess(t *testing.T) {
	b, err := Acquire[int](nil, 3)
	require.NoError(t, err)
	defer b.Release()

	*b.At(0) = 10
	*b.At(2) = 30
	assert.Equal(t, []int{10, 0, 30}, b.Slots())
	assert.Equal(t, []int{0, 30}, b.Offset(1))
	assert.Empty(t, b.Offset(3))
	assert.Equal(t, []int{10, 0}, b.Span(0, 2))

	assert.Panics(t, func() { b.At(3) })
	assert.Panics(t, func() { b.At(-1) })
	assert.Panics(t, func() { b.Offset(4) })
	assert.Panics(t, func() { b.Span(2, 1) })
	assert.Panics(t, func() { b.Span(0, 4) })
}

func TestSpanCapsAppend(t *testing.T) {
	b, err := Acquire[int](nil, 4)
	require.NoError(t, err)
	defer b.Release()

	s := b.Span(0, 2)
	_ = append(s, 7)
	assert.Zero(t, *b.At(2))
}

func TestExchange(t *testing.T) {
	a, err := Acquire[int](nil, 2)
	require.NoError(t, err)
	b, err := Acquire[int](nil, 5)
	require.NoError(t, err)
	*a.At(1) = 42

	a.Exchange(&b)
	assert.Equal(t, 5, a.Cap())
	assert.Equal(t, 2, b.Cap())
	assert.Equal(t, 42, *b.At(1))

	var empty Buffer[int]
	empty.Exchange(&a)
	assert.Equal(t, 5, empty.Cap())
	assert.Equal(t, 0, a.Cap())

	empty.Release()
	b.Release()
}

func TestBufferNoCopy(t *testing.T) {
	// the copylocks check looks for a Locker among the fields
	typ := reflect.TypeFor[Buffer[int]]()
	found := false
	for i := range typ.NumField() {
		if _, ok := reflect.New(typ.Field(i).Type).Interface().(sync.Locker); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLimit(t *testing.T) {
	a := Limit[int](nil, 6)

	b1, err := Acquire(a, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, InUse(a))

	_, err = Acquire(a, 3)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, 4, InUse(a))

	b1.Release()
	assert.Equal(t, 0, InUse(a))

	b2, err := Acquire(a, 6)
	require.NoError(t, err)
	b2.Release()

	assert.Equal(t, 0, InUse(Heap[int]()))
}

func TestPool(t *testing.T) {
	before := Usage()

	b, err := Acquire(Pool(), 1024)
	require.NoError(t, err)
	require.Equal(t, 1024, b.Cap())
	for i := range b.Slots() {
		b.Slots()[i] = 0xff
	}
	b.Release()

	// buffers handed back to the pool must come out clean
	b, err = Acquire(Pool(), 1024)
	require.NoError(t, err)
	for _, v := range b.Slots() {
		require.Zero(t, v)
	}
	b.Release()

	assert.Equal(t, before.Buffers, Usage().Buffers)
	assert.Equal(t, before.Bytes, Usage().Bytes)
}
