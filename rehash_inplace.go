package chunkmap

// rehashInPlace doubles logical capacity by extending the existing
// allocation (Allocator.Grow) instead of allocating a fresh array. Capacity
// doubling adds exactly one newly significant chunk-selection bit, so every
// old chunk's live entries partition between itself and its mirror chunk at
// i+oldChunkCount: no other chunk can receive them. Per old chunk:
//
//  1. Normalize tags, turning every DELETED into EMPTY.
//  2. Partition: entries whose new discriminator bit is 1 move to the
//     mirror chunk; the rest stay. Staying entries already in their home
//     lane are never touched.
//  3. Repair: staying entries outside their home lane are pulled out and
//     re-placed by linear-probing from the home lane, restoring the
//     invariant that no entry sits past an EMPTY in its probe sequence.
//     The departures in step 2 freed at least as many slots as the repair
//     pass needs, so every placement lands.
func (t *Table[K, V]) rehashInPlace() error {
	oldChunkCount := len(t.chunks)
	newChunkCount := oldChunkCount * 2
	newLogIncr := t.logIncr + 1

	grown, err := t.alloc.Grow(t.chunks, newChunkCount)
	if err != nil {
		return err
	}
	t.chunks = grown

	var pending []displacedEntry[K, V]
	for i := 0; i < oldChunkCount; i++ {
		c := &t.chunks[i]
		normalizeTombstones(&c.tags)

		pending = pending[:0]
		for s := 0; s < tagsPerChunk; s++ {
			if !isOccupied(c.tags[s]) {
				continue
			}
			loc := deriveLocation(t.hasher.Hash(c.pairs[s].key), newLogIncr)
			if loc.chunkIndex != uint64(i) {
				insertIntoEmptyChunk(t.chunks, loc, c.pairs[s].key, c.pairs[s].val)
				c.tags[s] = tagEmpty
				c.clearSlot(s)
				continue
			}
			if laneOfSlot(s) != int(loc.lane) {
				pending = append(pending, displacedEntry[K, V]{c.pairs[s].key, c.pairs[s].val, loc})
				c.tags[s] = tagEmpty
				c.clearSlot(s)
			}
		}

		for _, d := range pending {
			insertIntoEmptyChunk(t.chunks, d.loc, d.key, d.val)
		}
	}

	t.logIncr = newLogIncr
	return nil
}

type displacedEntry[K comparable, V any] struct {
	key K
	val V
	loc location
}

// normalizeTombstones turns every DELETED tag into EMPTY, elementwise min
// against the EMPTY pattern: DELETED (0xC0) exceeds EMPTY (0x80) and
// collapses to it, EMPTY maps to itself, and OCCUPIED tags have the high
// bit clear and pass through below 0x80.
func normalizeTombstones(tags *[tagsPerChunk]byte) {
	for s := range tags {
		if tags[s] > tagEmpty {
			tags[s] = tagEmpty
		}
	}
}

// compact rehashes within the current capacity: tombstones become EMPTY and
// entries stranded outside their home lane are re-placed, the same
// normalize/repair pass rehashInPlace runs minus the mirror partition.
func (t *Table[K, V]) compact() {
	var pending []displacedEntry[K, V]
	for i := range t.chunks {
		c := &t.chunks[i]
		normalizeTombstones(&c.tags)

		pending = pending[:0]
		for s := 0; s < tagsPerChunk; s++ {
			if !isOccupied(c.tags[s]) {
				continue
			}
			loc := deriveLocation(t.hasher.Hash(c.pairs[s].key), t.logIncr)
			if laneOfSlot(s) != int(loc.lane) {
				pending = append(pending, displacedEntry[K, V]{c.pairs[s].key, c.pairs[s].val, loc})
				c.tags[s] = tagEmpty
				c.clearSlot(s)
			}
		}

		for _, d := range pending {
			insertIntoEmptyChunk(t.chunks, d.loc, d.key, d.val)
		}
	}
}

// Compact removes tombstones without growing the table. Outstanding
// iterators are invalidated, same as any rehash.
func (t *Table[K, V]) Compact() {
	t.compact()
}
