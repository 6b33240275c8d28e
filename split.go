package chunkmap

// splitChunk stores 64 keys contiguously, then 64 values, instead of
// interleaving (K, V) pairs. This keeps key scans denser in cache after a
// tag match, which matters when K is small relative to V. The choice
// between layouts is a static, per-instance policy expressed in Go as a
// choice of constructor (New vs NewSplit) rather than a field on one
// generic type, since Go has no compile-time sizeof(V)-conditional code
// generation inside a single generic definition.
type splitChunk[K any, V any] struct {
	tags [tagsPerChunk]byte
	keys [tagsPerChunk]K
	vals [tagsPerChunk]V
}

func newSplitChunks[K any, V any](n int) []splitChunk[K, V] {
	cs := make([]splitChunk[K, V], n)
	for i := range cs {
		for j := range cs[i].tags {
			cs[i].tags[j] = tagEmpty
		}
	}
	return cs
}

func (c *splitChunk[K, V]) clearSlot(idx int) {
	var zk K
	var zv V
	c.keys[idx] = zk
	c.vals[idx] = zv
}

// SplitMap is the split-layout counterpart to Table. It implements the same
// operations and invariants; only the chunk's physical layout and,
// consequently, the accessors differ. Only the relocating rehash strategy
// is provided; see DESIGN.md for why the in-place strategy is scoped to
// the combined-layout Table.
type SplitMap[K comparable, V any] struct {
	chunks  []splitChunk[K, V]
	logIncr uint
	npairs  uint64
	hasher  Hasher[K]
	equal   func(a, b K) bool
}

// NewSplit constructs a split-layout table. Options mirror New/Option,
// minus WithAllocator (split layout always uses the heap allocator).
func NewSplit[K comparable, V any](opts ...Option[K, V]) (*SplitMap[K, V], error) {
	cfg := tableConfig[K, V]{
		equal: func(a, b K) bool { return a == b },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasher == nil {
		return nil, ErrHasherRequired
	}
	chunkCount := chunkCountFor(cfg.initialCapacity)
	return &SplitMap[K, V]{
		chunks:  newSplitChunks[K, V](chunkCount),
		logIncr: logIncrFor(chunkCount),
		hasher:  cfg.hasher,
		equal:   cfg.equal,
	}, nil
}

func (t *SplitMap[K, V]) Size() uint64       { return t.npairs }
func (t *SplitMap[K, V]) Empty() bool        { return t.npairs == 0 }
func (t *SplitMap[K, V]) Capacity() uint64   { return uint64(len(t.chunks)) * tagsPerChunk }
func (t *SplitMap[K, V]) LoadFactor() float64 {
	if len(t.chunks) == 0 {
		return 0
	}
	return float64(t.npairs) / float64(t.Capacity())
}

func (t *SplitMap[K, V]) Find(key K) (*V, bool) {
	h := t.hasher.Hash(key)
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchTag(&c.tags, li, loc.tag)
		for !m.empty() {
			idx := slotIndex(li, m.lowestSet())
			if t.equal(c.keys[idx], key) {
				return &c.vals[idx], true
			}
			m = m.clearLowest()
		}
		if !matchEmpty(&c.tags, li).empty() {
			return nil, false
		}
	}
	return nil, false
}

func (t *SplitMap[K, V]) Contains(key K) bool { _, ok := t.Find(key); return ok }

func (t *SplitMap[K, V]) Count(key K) int {
	if t.Contains(key) {
		return 1
	}
	return 0
}

func (t *SplitMap[K, V]) At(key K) *V {
	p, ok := t.Find(key)
	if !ok {
		panic(ErrKeyNotFound)
	}
	return p
}

func (t *SplitMap[K, V]) placeNew(c *splitChunk[K, V], idx int, tag byte, key K, value V) *V {
	c.tags[idx] = tag
	c.keys[idx] = key
	c.vals[idx] = value
	t.npairs++
	return &c.vals[idx]
}

func (t *SplitMap[K, V]) probeInsert(h uint64, key K, value V, assignOnDup, checkDup bool) (p *V, inserted bool, ok bool) {
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	delIdx := -1

	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)

		if checkDup {
			m := matchTag(&c.tags, li, loc.tag)
			for !m.empty() {
				idx := slotIndex(li, m.lowestSet())
				if t.equal(c.keys[idx], key) {
					if assignOnDup {
						c.vals[idx] = value
					}
					return &c.vals[idx], false, true
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

func (t *SplitMap[K, V]) doInsert(key K, value V, assignOnDup bool) (*V, bool) {
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

func (t *SplitMap[K, V]) Insert(key K, value V) (*V, bool) {
	return t.doInsert(key, value, false)
}

func (t *SplitMap[K, V]) InsertOrAssign(key K, value V) (*V, bool) {
	return t.doInsert(key, value, true)
}

// Emplace inserts key with a value built by construct, invoking construct
// only when key is absent, mirroring Table.Emplace.
func (t *SplitMap[K, V]) Emplace(key K, construct func() V) (*V, bool) {
	if p, ok := t.Find(key); ok {
		return p, false
	}
	return t.doInsert(key, construct(), false)
}

func (t *SplitMap[K, V]) Erase(key K) int {
	h := t.hasher.Hash(key)
	loc := deriveLocation(h, t.logIncr)
	c := &t.chunks[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchTag(&c.tags, li, loc.tag)
		for !m.empty() {
			idx := slotIndex(li, m.lowestSet())
			if t.equal(c.keys[idx], key) {
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

func (t *SplitMap[K, V]) Clear() {
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

// rehash doubles capacity, relocating; split layout does not offer the
// in-place strategy (see the SplitMap doc comment).
func (t *SplitMap[K, V]) rehash() {
	newChunkCount := len(t.chunks) * 2
	newLogIncr := t.logIncr + 1
	newChunks := newSplitChunks[K, V](newChunkCount)

	old := t.chunks
	for i := range old {
		src := &old[i]
		for slot := 0; slot < tagsPerChunk; slot++ {
			if !isOccupied(src.tags[slot]) {
				continue
			}
			key, val := src.keys[slot], src.vals[slot]
			loc := deriveLocation(t.hasher.Hash(key), newLogIncr)
			insertIntoEmptySplitChunk(newChunks, loc, key, val)
		}
	}
	t.chunks = newChunks
	t.logIncr = newLogIncr
}

func insertIntoEmptySplitChunk[K comparable, V any](cs []splitChunk[K, V], loc location, key K, val V) {
	c := &cs[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchEmpty(&c.tags, li)
		if m.empty() {
			continue
		}
		idx := slotIndex(li, m.lowestSet())
		c.tags[idx] = loc.tag
		c.keys[idx] = key
		c.vals[idx] = val
		return
	}
	panic(errRehashExhausted)
}

// SplitIterator walks a SplitMap the same way Iterator walks a Table.
type SplitIterator[K comparable, V any] struct {
	t        *SplitMap[K, V]
	chunkIdx int
	slotIdx  int
}

func (t *SplitMap[K, V]) Begin() SplitIterator[K, V] {
	it := SplitIterator[K, V]{t: t, chunkIdx: 0, slotIdx: -1}
	it.Advance()
	return it
}

func (t *SplitMap[K, V]) End() SplitIterator[K, V] {
	return SplitIterator[K, V]{t: t, chunkIdx: len(t.chunks), slotIdx: 0}
}

func (it SplitIterator[K, V]) atEnd() bool { return it.chunkIdx >= len(it.t.chunks) }
func (it SplitIterator[K, V]) Done() bool  { return it.atEnd() }

func (it *SplitIterator[K, V]) Advance() {
	for {
		it.slotIdx++
		if it.slotIdx >= tagsPerChunk {
			it.slotIdx = 0
			it.chunkIdx++
		}
		if it.atEnd() {
			return
		}
		if isOccupied(it.t.chunks[it.chunkIdx].tags[it.slotIdx]) {
			return
		}
	}
}

func (it *SplitIterator[K, V]) Retreat() {
	for {
		it.slotIdx--
		if it.slotIdx < 0 {
			it.chunkIdx--
			it.slotIdx = tagsPerChunk - 1
		}
		if it.chunkIdx < 0 {
			it.chunkIdx = 0
			it.slotIdx = -1
			return
		}
		if isOccupied(it.t.chunks[it.chunkIdx].tags[it.slotIdx]) {
			return
		}
	}
}

// Key returns the key at the iterator's position. Split layout stores keys
// contiguously, so this, unlike Table's Key(), reads from the dedicated key
// array rather than a (key, value) pair.
func (it SplitIterator[K, V]) Key() K { return it.t.chunks[it.chunkIdx].keys[it.slotIdx] }

// Value returns a mutable pointer to the value at the iterator's position.
func (it SplitIterator[K, V]) Value() *V { return &it.t.chunks[it.chunkIdx].vals[it.slotIdx] }

// EraseIterator erases the entry the iterator currently addresses,
// equivalent to Erase(it.Key()).
func (t *SplitMap[K, V]) EraseIterator(it SplitIterator[K, V]) int {
	if it.atEnd() {
		return NotErased
	}
	return t.Erase(it.Key())
}

// ForEach visits every live (key, value) pair. Returning false from yield
// stops iteration early.
func (t *SplitMap[K, V]) ForEach(yield func(key K, value *V) bool) {
	for it := t.Begin(); !it.Done(); it.Advance() {
		if !yield(it.Key(), it.Value()) {
			return
		}
	}
}
