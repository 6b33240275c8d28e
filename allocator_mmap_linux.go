//go:build linux

package chunkmap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapAllocator is an in-place-growing Allocator: it reserves chunk storage
// via unix.Mmap and extends it with unix.Mremap (MAP_PRIVATE|MAP_ANONYMOUS,
// no MREMAP_MAYMOVE), so growth either lands at the same base address or
// fails outright, never silently relocating.
type mmapAllocator[K comparable, V any] struct{}

// NewMmapAllocator returns the in-place-growing Allocator backed by an
// anonymous mmap reservation. K and V must be pointer-free (see
// typeHasPointers): chunk storage lives outside the Go heap and the
// garbage collector cannot trace references into it. reserveHint is unused
// on Linux (unix.Mremap grows the mapping on demand); it exists so callers
// can share one construction signature across platforms. See the portable
// fallback in allocator_mmap_other.go.
func NewMmapAllocator[K comparable, V any](reserveHint int) (Allocator[K, V], error) {
	_ = reserveHint
	if err := checkMmapSafe[K, V](); err != nil {
		return nil, err
	}
	return mmapAllocator[K, V]{}, nil
}

func (mmapAllocator[K, V]) InPlaceCapable() bool { return true }

func (mmapAllocator[K, V]) Allocate(n int) ([]chunk[K, V], error) {
	if n == 0 {
		return nil, nil
	}
	size := int(chunkByteSize[K, V]()) * n
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %v", ErrAllocatorExhausted, err)
	}
	cs := bytesAsChunks[K, V](b)
	markChunksEmpty(cs, 0)
	return cs, nil
}

func (mmapAllocator[K, V]) Deallocate(cs []chunk[K, V]) {
	b := chunksAsBytes(cs)
	if b == nil {
		return
	}
	_ = unix.Munmap(b)
}

func (mmapAllocator[K, V]) Grow(cs []chunk[K, V], newN int) ([]chunk[K, V], error) {
	oldLen := len(cs)
	if newN <= oldLen {
		return cs, nil
	}
	oldBytes := chunksAsBytes(cs)
	newSize := int(chunkByteSize[K, V]()) * newN
	if oldBytes == nil {
		return mmapAllocator[K, V]{}.Allocate(newN)
	}
	grown, err := unix.Mremap(oldBytes, newSize, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: mremap: %v", ErrAllocatorExhausted, err)
	}
	out := bytesAsChunks[K, V](grown)
	markChunksEmpty(out, oldLen)
	return out, nil
}
