package chunkmap

import (
	"fmt"
	"reflect"
	"unsafe"
)

// chunkByteSize returns the size in bytes of one chunk[K, V].
func chunkByteSize[K comparable, V any]() uintptr {
	var z chunk[K, V]
	return unsafe.Sizeof(z)
}

// chunksAsBytes reinterprets a chunk slice as its backing bytes, with no
// copy. Used so the mmap allocator can hand the same memory to
// unix.Mremap that it originally received from unix.Mmap.
func chunksAsBytes[K comparable, V any](cs []chunk[K, V]) []byte {
	if len(cs) == 0 {
		return nil
	}
	sz := chunkByteSize[K, V]()
	return unsafe.Slice((*byte)(unsafe.Pointer(&cs[0])), uintptr(len(cs))*sz)
}

// bytesAsChunks reinterprets raw bytes (length a multiple of one chunk's
// size) as a chunk slice, with no copy.
func bytesAsChunks[K comparable, V any](b []byte) []chunk[K, V] {
	if len(b) == 0 {
		return nil
	}
	sz := chunkByteSize[K, V]()
	n := uintptr(len(b)) / sz
	return unsafe.Slice((*chunk[K, V])(unsafe.Pointer(&b[0])), n)
}

// markChunksEmpty writes the EMPTY tag into every slot of cs[from:]. The
// mmap allocator cannot rely on zero-filled pages meaning EMPTY, since our
// EMPTY tag (0x80) is not the zero byte.
func markChunksEmpty[K comparable, V any](cs []chunk[K, V], from int) {
	for i := from; i < len(cs); i++ {
		for j := range cs[i].tags {
			cs[i].tags[j] = tagEmpty
		}
	}
}

// typeHasPointers reports whether t's in-memory representation can contain
// a Go pointer the garbage collector must track. The mmap allocator places
// chunk storage outside the Go heap, so K and V used with it must be
// pointer-free: objects allocated outside the GC's view must never hold
// live references into it.
func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer, reflect.String:
		return true
	case reflect.Array:
		return typeHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// checkMmapSafe returns an error if K or V contains pointers, since mmap'd
// chunk storage is invisible to the garbage collector.
func checkMmapSafe[K comparable, V any]() error {
	var k K
	var v V
	if typeHasPointers(reflect.TypeOf(&k).Elem()) {
		return fmt.Errorf("chunkmap: mmap allocator requires a pointer-free key type, got %T", k)
	}
	if typeHasPointers(reflect.TypeOf(&v).Elem()) {
		return fmt.Errorf("chunkmap: mmap allocator requires a pointer-free value type, got %T", v)
	}
	return nil
}
