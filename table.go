package chunkmap

import (
	"errors"
	"math/bits"
)

// Return codes for Erase.
const (
	NotErased = 0
	Erased    = 1
)

// ErrHasherRequired is returned by New when no Hasher was supplied. The
// hash functor is an external collaborator the host must provide; there is
// no type-directed default that works for every K.
var ErrHasherRequired = errors.New("chunkmap: a Hasher is required (see WithHasher)")

// Table is a single-threaded, chunked, tagged hash table using the combined
// (interleaved key/value) layout. See SplitMap for the split layout
// variant.
type Table[K comparable, V any] struct {
	chunks  []chunk[K, V]
	logIncr uint
	npairs  uint64
	hasher  Hasher[K]
	equal   func(a, b K) bool
	alloc   Allocator[K, V]
}

// Option configures a Table at construction.
type Option[K comparable, V any] func(*tableConfig[K, V])

type tableConfig[K comparable, V any] struct {
	hasher          Hasher[K]
	equal           func(a, b K) bool
	initialCapacity uint64
	alloc           Allocator[K, V]
}

// WithHasher supplies the hash functor. Required.
func WithHasher[K comparable, V any](h Hasher[K]) Option[K, V] {
	return func(c *tableConfig[K, V]) { c.hasher = h }
}

// WithEqual overrides the key equality predicate; default is Go's built-in
// `==` on K.
func WithEqual[K comparable, V any](eq func(a, b K) bool) Option[K, V] {
	return func(c *tableConfig[K, V]) { c.equal = eq }
}

// WithInitialCapacity rounds up to the next power-of-two slot count.
func WithInitialCapacity[K comparable, V any](n uint64) Option[K, V] {
	return func(c *tableConfig[K, V]) { c.initialCapacity = n }
}

// WithAllocator selects the page-granularity allocator. Default is the
// relocating heap allocator.
func WithAllocator[K comparable, V any](a Allocator[K, V]) Option[K, V] {
	return func(c *tableConfig[K, V]) { c.alloc = a }
}

// New constructs a Table. Capacity is rounded up to the next power of two
// chunk count, minimum one chunk (64 slots, one cache line of tags).
func New[K comparable, V any](opts ...Option[K, V]) (*Table[K, V], error) {
	cfg := tableConfig[K, V]{
		equal: func(a, b K) bool { return a == b },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasher == nil {
		return nil, ErrHasherRequired
	}
	if cfg.alloc == nil {
		cfg.alloc = NewHeapAllocator[K, V]()
	}

	chunkCount := chunkCountFor(cfg.initialCapacity)
	cs, err := cfg.alloc.Allocate(chunkCount)
	if err != nil {
		return nil, err
	}
	return &Table[K, V]{
		chunks:  cs,
		logIncr: logIncrFor(chunkCount),
		hasher:  cfg.hasher,
		equal:   cfg.equal,
		alloc:   cfg.alloc,
	}, nil
}

// chunkCountFor returns the smallest power-of-two chunk count whose
// capacity (chunkCount*tagsPerChunk) is >= capacityHint, at least 1.
func chunkCountFor(capacityHint uint64) int {
	need := (capacityHint + tagsPerChunk - 1) / tagsPerChunk
	if need <= 1 {
		return 1
	}
	return 1 << bits.Len64(need-1)
}

// logIncrFor returns log2(chunkCount*tagsPerChunk).
func logIncrFor(chunkCount int) uint {
	return uint(bits.Len64(uint64(chunkCount))-1) + tagsPerChunkLog2
}

// Size returns the number of live entries.
func (t *Table[K, V]) Size() uint64 { return t.npairs }

// Empty reports whether Size() == 0.
func (t *Table[K, V]) Empty() bool { return t.npairs == 0 }

// Capacity returns the total slot count (chunkCount * 64).
func (t *Table[K, V]) Capacity() uint64 { return uint64(len(t.chunks)) * tagsPerChunk }

// LoadFactor returns npairs / capacity.
func (t *Table[K, V]) LoadFactor() float64 {
	if len(t.chunks) == 0 {
		return 0
	}
	return float64(t.npairs) / float64(t.Capacity())
}

// Stats is a read-only snapshot of the table's occupancy.
type Stats struct {
	Size            uint64
	Capacity        uint64
	ChunkCount      int
	LoadFactor      float64
	TombstoneFactor float64
}

// Stats computes a full tombstone/load snapshot by scanning every chunk.
func (t *Table[K, V]) Stats() Stats {
	var tombstones uint64
	for i := range t.chunks {
		for _, tag := range t.chunks[i].tags {
			if isDeletedTag(tag) {
				tombstones++
			}
		}
	}
	capacity := t.Capacity()
	s := Stats{
		Size:       t.npairs,
		Capacity:   capacity,
		ChunkCount: len(t.chunks),
	}
	if capacity > 0 {
		s.LoadFactor = float64(t.npairs) / float64(capacity)
		s.TombstoneFactor = float64(tombstones) / float64(capacity)
	}
	return s
}

func laneOrder(start uint8, j int) int {
	return int((start + uint8(j)) % lanesPerChunk)
}

func slotIndex(lane, bit int) int { return lane*(bytesPerWord*wordsPerLane) + bit }

func laneOfSlot(slot int) int { return slot / (bytesPerWord * wordsPerLane) }

// Find returns a pointer to the value stored for key and true, or (nil,
// false) if absent.
func (t *Table[K, V]) Find(key K) (*V, bool) {
	h := t.hasher.Hash(key)
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchTag(&c.tags, li, loc.tag)
		for !m.empty() {
			idx := slotIndex(li, m.lowestSet())
			if t.equal(c.pairs[idx].key, key) {
				return &c.pairs[idx].val, true
			}
			m = m.clearLowest()
		}
		if !matchEmpty(&c.tags, li).empty() {
			return nil, false
		}
	}
	return nil, false
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.Find(key)
	return ok
}

// Count returns 1 if key is present, 0 otherwise.
func (t *Table[K, V]) Count(key K) int {
	if t.Contains(key) {
		return 1
	}
	return 0
}

// At returns a pointer to the value for key. Precondition: key is present;
// violating it panics with ErrKeyNotFound. Go has no undefined-behavior
// escape hatch, so a panic substitutes for it here.
func (t *Table[K, V]) At(key K) *V {
	p, ok := t.Find(key)
	if !ok {
		panic(ErrKeyNotFound)
	}
	return p
}

func (t *Table[K, V]) placeNew(c *chunk[K, V], idx int, tag byte, key K, value V) *V {
	c.tags[idx] = tag
	c.pairs[idx] = pair[K, V]{key: key, val: value}
	t.npairs++
	return &c.pairs[idx].val
}

// probeInsert scans one chunk's probe window for an existing key or a free
// slot. ok is false when the window is exhausted (no EMPTY/DELETED slot
// found); the caller must rehash and retry.
func (t *Table[K, V]) probeInsert(h uint64, key K, value V, assignOnDup, checkDup bool) (p *V, inserted bool, ok bool) {
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	delIdx := -1

	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)

		if checkDup {
			m := matchTag(&c.tags, li, loc.tag)
			for !m.empty() {
				idx := slotIndex(li, m.lowestSet())
				if t.equal(c.pairs[idx].key, key) {
					if assignOnDup {
						c.pairs[idx].val = value
					}
					return &c.pairs[idx].val, false, true
				}
				m = m.clearLowest()
			}
		}

		if delIdx == -1 {
			eod := matchEmptyOrDeleted(&c.tags, li)
			if eod.empty() {
				continue
			}
			idx := slotIndex(li, eod.lowestSet())
			if isDeletedTag(c.tags[idx]) {
				if !matchEmpty(&c.tags, li).empty() {
					return t.placeNew(c, idx, loc.tag, key, value), true, true
				}
				delIdx = idx
				continue
			}
			// Lowest empty-or-deleted byte is EMPTY: place and stop.
			return t.placeNew(c, idx, loc.tag, key, value), true, true
		}

		if !matchEmpty(&c.tags, li).empty() {
			return t.placeNew(c, delIdx, loc.tag, key, value), true, true
		}
	}

	if delIdx != -1 {
		return t.placeNew(c, delIdx, loc.tag, key, value), true, true
	}
	return nil, false, false
}

// doInsert wraps probeInsert with rehash-and-retry.
func (t *Table[K, V]) doInsert(key K, value V, assignOnDup bool) (*V, bool) {
	h := t.hasher.Hash(key)
	if p, inserted, ok := t.probeInsert(h, key, value, assignOnDup, true); ok {
		return p, inserted
	}
	t.rehash()
	p, inserted, ok := t.probeInsert(h, key, value, assignOnDup, false)
	if !ok {
		panic(errRehashExhausted)
	}
	return p, inserted
}

// Insert places key/value if absent. Returns (pointer, true) if newly
// added, or (existing pointer, false) if key was already present: the
// existing value is left untouched.
func (t *Table[K, V]) Insert(key K, value V) (*V, bool) {
	return t.doInsert(key, value, false)
}

// InsertOrAssign places key/value, overwriting the existing value if key
// was already present.
func (t *Table[K, V]) InsertOrAssign(key K, value V) (*V, bool) {
	return t.doInsert(key, value, true)
}

// Emplace inserts key with a value built by construct, invoking construct
// only when key is absent. This is the Go rendition of in-place
// construction from arguments: when the value is expensive to build,
// nothing is built on the duplicate path.
func (t *Table[K, V]) Emplace(key K, construct func() V) (*V, bool) {
	if p, ok := t.Find(key); ok {
		return p, false
	}
	return t.doInsert(key, construct(), false)
}

// Erase removes key if present, returning Erased or NotErased.
func (t *Table[K, V]) Erase(key K) int {
	h := t.hasher.Hash(key)
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchTag(&c.tags, li, loc.tag)
		for !m.empty() {
			idx := slotIndex(li, m.lowestSet())
			if t.equal(c.pairs[idx].key, key) {
				c.tags[idx] = tagDeleted
				c.clearSlot(idx)
				t.npairs--
				return Erased
			}
			m = m.clearLowest()
		}
		if !matchEmpty(&c.tags, li).empty() {
			return NotErased
		}
	}
	return NotErased
}

// Clear marks every slot EMPTY and resets Size() to 0. Does not free
// memory.
func (t *Table[K, V]) Clear() {
	for i := range t.chunks {
		c := &t.chunks[i]
		for j := 0; j < tagsPerChunk; j++ {
			if isOccupied(c.tags[j]) {
				c.clearSlot(j)
			}
			c.tags[j] = tagEmpty
		}
	}
	t.npairs = 0
}
