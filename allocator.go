package chunkmap

import "errors"

// ErrAllocatorExhausted is returned when an Allocator cannot satisfy a
// request. From Allocate it is fatal for the table: New returns it, and a
// relocating rehash panics with it. From Grow it is not: the table falls
// back to a relocating rehash.
var ErrAllocatorExhausted = errors.New("chunkmap: allocator exhausted")

// Allocator hands back contiguous, zeroed chunk arrays and reclaims them.
// Two shapes are supported, distinguished by InPlaceCapable:
//
//   - Relocating: every Allocate call returns a fresh backing array; the
//     table copies live entries over and calls Deallocate on the old one.
//   - In-place growing: Allocate still returns a fresh array, but Grow
//     extends an array it returned in place instead of replacing it, so
//     doubling the logical capacity does not move the first half.
type Allocator[K comparable, V any] interface {
	// Allocate returns a chunk array of length n with every tag EMPTY.
	Allocate(n int) ([]chunk[K, V], error)

	// Deallocate releases a chunk array previously returned by Allocate or
	// Grow. A relocating allocator frees it; an in-place allocator may
	// treat this as a no-op until the whole table is destroyed.
	Deallocate(cs []chunk[K, V])

	// InPlaceCapable reports whether Grow can extend an existing array
	// without relocating it. The table picks its rehash strategy based on
	// this.
	InPlaceCapable() bool

	// Grow extends cs, previously returned by Allocate, to newN chunks in
	// place, returning the same backing array resliced, with the newly
	// added chunks' tags set to EMPTY. Only called when InPlaceCapable
	// reports true. Returns ErrAllocatorExhausted if the platform refuses
	// to extend the mapping in place (e.g. another allocation sits directly
	// after it in the address space). The table then falls back to a
	// relocating rehash.
	Grow(cs []chunk[K, V], newN int) ([]chunk[K, V], error)
}

// heapAllocator is the relocating allocator: plain make(), freed by letting
// the garbage collector reclaim it.
type heapAllocator[K comparable, V any] struct{}

// NewHeapAllocator returns the default relocating Allocator.
func NewHeapAllocator[K comparable, V any]() Allocator[K, V] {
	return heapAllocator[K, V]{}
}

func (heapAllocator[K, V]) Allocate(n int) ([]chunk[K, V], error) {
	return newChunks[K, V](n), nil
}

func (heapAllocator[K, V]) Deallocate(_ []chunk[K, V]) {}

func (heapAllocator[K, V]) InPlaceCapable() bool { return false }

func (heapAllocator[K, V]) Grow(_ []chunk[K, V], _ int) ([]chunk[K, V], error) {
	panic("chunkmap: Grow called on an allocator that is not in-place capable")
}
