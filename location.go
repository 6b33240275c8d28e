package chunkmap

// location is the result of splitting a 64-bit digest into the three
// disjoint pieces the table needs: which chunk to start in, which of the
// chunk's four lanes to begin probing at, and the 7-bit tag to compare
// against. The chunk index is read from bit 1 upward (h>>1), so once the
// table has more than one chunk its low bits overlap tag bits 1..6; the tag
// always adds bit 0, plus any of bits 1..6 that lie above the chunk index.
type location struct {
	chunkIndex uint64
	lane       uint8 // 0..3, probe start lane
	tag        byte
}

// deriveLocation computes a location for digest h against a table whose
// capacity is 1<<logIncr slots (1<<(logIncr-6) chunks).
func deriveLocation(h uint64, logIncr uint) location {
	chunkBits := logIncr - tagsPerChunkLog2
	var chunkMask uint64
	if chunkBits > 0 {
		chunkMask = (uint64(1) << chunkBits) - 1
	}
	return location{
		chunkIndex: (h >> 1) & chunkMask,
		lane:       uint8(h >> 62),
		tag:        tagFromHash(h),
	}
}

// tagsPerChunkLog2 is log2(tagsPerChunk): chunk count = 1 << (logIncr - 6).
const tagsPerChunkLog2 = 6
