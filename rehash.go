package chunkmap

// rehash grows the table by one logIncr step (doubling capacity), picking
// the strategy based on the allocator: in-place when the allocator supports
// it, otherwise relocating. If an in-place grow is refused by the platform
// (ErrAllocatorExhausted from Allocator.Grow, e.g. something else sits
// right after the mapping in the address space), the table falls back to a
// relocating rehash rather than treating that as fatal.
func (t *Table[K, V]) rehash() {
	if t.alloc.InPlaceCapable() {
		if err := t.rehashInPlace(); err == nil {
			return
		}
	}
	t.rehashRelocating()
}

// rehashRelocating allocates a fresh chunk array of double the size,
// re-partitions every live entry into it (dropping tombstones), and frees
// the old array.
func (t *Table[K, V]) rehashRelocating() {
	newChunkCount := len(t.chunks) * 2
	newLogIncr := t.logIncr + 1

	newChunks, err := t.alloc.Allocate(newChunkCount)
	if err != nil {
		panic(err) // allocator exhaustion is fatal
	}

	old := t.chunks
	for i := range old {
		src := &old[i]
		for slot := 0; slot < tagsPerChunk; slot++ {
			if !isOccupied(src.tags[slot]) {
				continue
			}
			key, val := src.pairs[slot].key, src.pairs[slot].val
			loc := deriveLocation(t.hasher.Hash(key), newLogIncr)
			insertIntoEmptyChunk(newChunks, loc, key, val)
		}
	}

	t.alloc.Deallocate(old)
	t.chunks = newChunks
	t.logIncr = newLogIncr
}

// insertIntoEmptyChunk places key/val into the first free slot found by
// linear-probing loc's 4 lanes starting at loc.lane. Used by both rehash
// strategies, where every entry being placed is already known unique, so
// no duplicate check is needed.
func insertIntoEmptyChunk[K comparable, V any](cs []chunk[K, V], loc location, key K, val V) {
	c := &cs[loc.chunkIndex]
	for j := 0; j < lanesPerChunk; j++ {
		li := laneOrder(loc.lane, j)
		m := matchEmpty(&c.tags, li)
		if m.empty() {
			continue
		}
		idx := slotIndex(li, m.lowestSet())
		c.tags[idx] = loc.tag
		c.pairs[idx] = pair[K, V]{key: key, val: val}
		return
	}
	// Capacity just doubled; every chunk has ample room. Reaching here
	// means something is fundamentally wrong, e.g. a non-deterministic
	// Hasher.
	panic(errRehashExhausted)
}
