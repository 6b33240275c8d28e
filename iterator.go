package chunkmap

// Iterator walks live (OCCUPIED) slots across the chunk array, skipping
// EMPTY and DELETED slots. It holds a (chunk, slot) position rather than a
// raw tag pointer (Go has no pointer arithmetic), but the semantics are the
// same as a pointer-walking iterator: Advance/Retreat skip dead slots, and
// End() is a synthetic position one chunk past the last.
//
// Rehash invalidates every outstanding Iterator; using one afterwards
// produces undefined results.
type Iterator[K comparable, V any] struct {
	t        *Table[K, V]
	chunkIdx int
	slotIdx  int
}

// Begin returns an iterator at the first OCCUPIED slot, or End() if the
// table is empty.
func (t *Table[K, V]) Begin() Iterator[K, V] {
	it := Iterator[K, V]{t: t, chunkIdx: 0, slotIdx: -1}
	it.Advance()
	return it
}

// End returns the synthetic end-of-table iterator.
func (t *Table[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{t: t, chunkIdx: len(t.chunks), slotIdx: 0}
}

func (it Iterator[K, V]) atEnd() bool { return it.chunkIdx >= len(it.t.chunks) }

// Done reports whether the iterator has reached End().
func (it Iterator[K, V]) Done() bool { return it.atEnd() }

// Advance steps forward until the next OCCUPIED slot or End() is reached:
// pre-step the position, jump from the last tag of a chunk straight to the
// next chunk's first tag, then skip any EMPTY/DELETED tag.
func (it *Iterator[K, V]) Advance() {
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

// Retreat steps backward until the previous OCCUPIED slot is reached.
// Symmetric to Advance.
func (it *Iterator[K, V]) Retreat() {
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

// Key returns the key at the iterator's current position. Only valid when
// !Done().
func (it Iterator[K, V]) Key() K {
	return it.t.chunks[it.chunkIdx].pairs[it.slotIdx].key
}

// Value returns a mutable pointer to the value at the iterator's current
// position. Only valid when !Done().
func (it Iterator[K, V]) Value() *V {
	return &it.t.chunks[it.chunkIdx].pairs[it.slotIdx].val
}

// EraseIterator erases the entry the iterator currently addresses,
// equivalent to Erase(it.Key()).
func (t *Table[K, V]) EraseIterator(it Iterator[K, V]) int {
	if it.atEnd() {
		return NotErased
	}
	return t.Erase(it.Key())
}

// ForEach visits every live (key, value) pair, the range-over-func
// counterpart to the pointer-style Iterator. Returning false from yield
// stops iteration early.
func (t *Table[K, V]) ForEach(yield func(key K, value *V) bool) {
	for it := t.Begin(); !it.Done(); it.Advance() {
		if !yield(it.Key(), it.Value()) {
			return
		}
	}
}
