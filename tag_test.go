package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_EmptyAndDeletedAreDistinctButBothHighBitSet(t *testing.T) {
	assert.True(t, isEmptyOrDeleted(tagEmpty))
	assert.True(t, isEmptyOrDeleted(tagDeleted))
	assert.True(t, isEmptyTag(tagEmpty))
	assert.False(t, isEmptyTag(tagDeleted))
	assert.True(t, isDeletedTag(tagDeleted))
	assert.False(t, isDeletedTag(tagEmpty))
	assert.False(t, isOccupied(tagEmpty))
	assert.False(t, isOccupied(tagDeleted))
}

func TestTag_OccupiedNeverAliasesEmptyOrDeleted(t *testing.T) {
	for h := uint64(0); h < 256; h++ {
		tag := tagFromHash(h)
		assert.True(t, isOccupied(tag))
		assert.False(t, isEmptyOrDeleted(tag))
		assert.Equal(t, byte(h)&0x7F, tag)
	}
}
