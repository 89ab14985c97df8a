package memory

import (
	memgo "github.com/imgk/memory-go"
)

// Pool returns a byte allocator drawing from memory-go. Buffers may come
// back dirty from the pool, so they are cleared before use. Only
// pointer-free element types may live in such memory, hence byte.
func Pool() Allocator[byte] {
	return pool{}
}

type pool struct{}

// Allocate is ...
func (pool) Allocate(n int) ([]byte, func(), error) {
	ptr, b, err := memgo.Alloc[byte](n)
	if err != nil {
		return nil, nil, err
	}
	if len(b) > n {
		b = b[:n]
	}
	clear(b)
	return b, func() { memgo.Free(ptr) }, nil
}
