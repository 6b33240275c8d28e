package chunkmap

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Hasher is a deterministic callable producing an unsigned digest for a
// key. The table treats the digest as opaque bits: bit ordering affects
// probing and chunk selection, never correctness.
type Hasher[K any] interface {
	Hash(key K) uint64
}

// HasherFunc adapts a plain function to Hasher, the same shape as the
// table's other functional-option callbacks.
type HasherFunc[K any] func(K) uint64

func (f HasherFunc[K]) Hash(key K) uint64 { return f(key) }

// StringHasher hashes string keys with xxHash.
func StringHasher() Hasher[string] {
	return HasherFunc[string](xxhash.Sum64String)
}

// BytesHasher hashes []byte keys with xxHash.
func BytesHasher() Hasher[[]byte] {
	return HasherFunc[[]byte](xxhash.Sum64)
}

// FixedHasher builds a Hasher for any fixed-size, pointer-free comparable
// key K by viewing its bytes directly and hashing them with xxHash, rather
// than serializing field by field.
//
// K must not contain pointers, slices, maps, strings, or interfaces: their
// runtime representations are not meaningful as hash input and two
// logically-equal keys are not guaranteed to have identical bytes (e.g. a
// string's header is a pointer+length, not its contents). Use StringHasher
// or BytesHasher for those instead.
func FixedHasher[K comparable]() Hasher[K] {
	return HasherFunc[K](func(k K) uint64 {
		size := unsafe.Sizeof(k)
		b := unsafe.Slice((*byte)(unsafe.Pointer(&k)), size)
		return xxhash.Sum64(b)
	})
}

// Uint64Hasher hashes a uint64 key directly via xxHash's byte view of the
// eight-byte value, avoiding an allocation for the common integer-key case.
func Uint64Hasher() Hasher[uint64] {
	return FixedHasher[uint64]()
}

// From32 widens a 32-bit digest into the table's 64-bit digest space by
// duplicating it into both halves, so the 2 most-significant bits (the
// lane selector) and the low 7 bits (the tag) both carry real hash entropy
// instead of all-zero padding. Use when wrapping a 32-bit-only hash
// functor.
func From32(h32 uint32) uint64 {
	h := uint64(h32)
	return h<<32 | h
}
