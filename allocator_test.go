package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocator_AllocateReturnsAllEmptyChunks(t *testing.T) {
	alloc := NewHeapAllocator[uint64, uint64]()
	cs, err := alloc.Allocate(4)
	require.NoError(t, err)
	require.Len(t, cs, 4)
	for i := range cs {
		for _, tag := range cs[i].tags {
			assert.Equal(t, tagEmpty, tag)
		}
	}
	assert.False(t, alloc.InPlaceCapable())
}

func TestMmapAllocator_GrowExtendsWithEmptyTags(t *testing.T) {
	alloc, err := NewMmapAllocator[uint64, uint64](0)
	require.NoError(t, err)
	require.True(t, alloc.InPlaceCapable())

	cs, err := alloc.Allocate(2)
	require.NoError(t, err)
	require.Len(t, cs, 2)

	cs[0].tags[0] = tagFromHash(123)

	grown, err := alloc.Grow(cs, 4)
	require.NoError(t, err)
	require.Len(t, grown, 4)
	assert.Equal(t, tagFromHash(123), grown[0].tags[0])
	for _, tag := range grown[2].tags {
		assert.Equal(t, tagEmpty, tag)
	}
	for _, tag := range grown[3].tags {
		assert.Equal(t, tagEmpty, tag)
	}
}

func TestMmapAllocator_RejectsPointerHoldingTypes(t *testing.T) {
	_, err := NewMmapAllocator[uint64, string](0)
	assert.Error(t, err)
}
