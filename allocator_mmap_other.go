//go:build !linux

package chunkmap

import "fmt"

// mmapAllocator is the in-place-growing Allocator's portable fallback for
// platforms without unix.Mremap (see allocator_mmap_linux.go for the real
// mmap-backed version). It pre-reserves a Go slice at a generous capacity
// and grows within that capacity without reallocating: the same "reserve
// once, commit as needed" shape, approximated with a Go slice instead of a
// raw virtual-memory mapping.
type mmapAllocator[K comparable, V any] struct {
	reserveChunks int
}

// NewMmapAllocator returns the in-place-growing Allocator. reserveHint
// bounds how far Grow can extend the array without a real virtual-memory
// reservation behind it (0 picks a generous default); once exhausted, Grow
// returns ErrAllocatorExhausted and the table falls back to relocating
// rehash.
func NewMmapAllocator[K comparable, V any](reserveHint int) (Allocator[K, V], error) {
	if err := checkMmapSafe[K, V](); err != nil {
		return nil, err
	}
	if reserveHint <= 0 {
		reserveHint = 1 << 20
	}
	return mmapAllocator[K, V]{reserveChunks: reserveHint}, nil
}

func (a mmapAllocator[K, V]) InPlaceCapable() bool { return true }

func (a mmapAllocator[K, V]) Allocate(n int) ([]chunk[K, V], error) {
	reserve := n
	if reserve < a.reserveChunks {
		reserve = a.reserveChunks
	}
	backing := make([]chunk[K, V], n, reserve)
	markChunksEmpty(backing, 0)
	return backing, nil
}

func (mmapAllocator[K, V]) Deallocate(_ []chunk[K, V]) {}

func (a mmapAllocator[K, V]) Grow(cs []chunk[K, V], newN int) ([]chunk[K, V], error) {
	oldLen := len(cs)
	if newN <= oldLen {
		return cs, nil
	}
	if newN > cap(cs) {
		return nil, fmt.Errorf("%w: reservation of %d chunks exhausted", ErrAllocatorExhausted, a.reserveChunks)
	}
	out := cs[:newN]
	markChunksEmpty(out, oldLen)
	return out, nil
}
