package chunkmap

// A tag is one metadata byte per slot. The high bit distinguishes OCCUPIED
// (clear) from EMPTY/DELETED (set); among the latter, the second-high bit
// tells them apart.
//
//	EMPTY:    1000_0000 (0x80)
//	DELETED:  1100_0000 (0xC0)
//	OCCUPIED: 0xxx_xxxx  (low 7 bits are the hash tag)
const (
	tagEmpty   byte = 0x80
	tagDeleted byte = 0xC0

	// tagHighBit, when clear, marks a tag byte OCCUPIED.
	tagHighBit byte = 0x80
	// tagContentMask extracts the 7-bit hash fingerprint from an OCCUPIED tag.
	tagContentMask byte = 0x7F
)

func isOccupied(tag byte) bool { return tag&tagHighBit == 0 }
func isEmptyTag(tag byte) bool { return tag == tagEmpty }
func isDeletedTag(tag byte) bool { return tag == tagDeleted }
func isEmptyOrDeleted(tag byte) bool { return tag&tagHighBit != 0 }

// tagFromHash extracts the 7-bit occupied tag from a digest's low bits.
func tagFromHash(h uint64) byte {
	return byte(h) & tagContentMask
}
