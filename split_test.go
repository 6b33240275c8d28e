package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSplitMap(t *testing.T) *SplitMap[uint64, uint64] {
	t.Helper()
	m, err := NewSplit[uint64, uint64](WithHasher[uint64, uint64](Uint64Hasher()))
	require.NoError(t, err)
	return m
}

func TestSplitMap_InsertAndFind(t *testing.T) {
	m := newTestSplitMap(t)
	_, inserted := m.Insert(1, 10)
	require.True(t, inserted)

	v, ok := m.Find(1)
	require.True(t, ok)
	assert.Equal(t, uint64(10), *v)
}

func TestSplitMap_InsertOrAssign(t *testing.T) {
	m := newTestSplitMap(t)
	m.Insert(1, 10)
	v, inserted := m.InsertOrAssign(1, 20)
	assert.False(t, inserted)
	assert.Equal(t, uint64(20), *v)
}

func TestSplitMap_Erase(t *testing.T) {
	m := newTestSplitMap(t)
	m.Insert(1, 10)
	assert.Equal(t, Erased, m.Erase(1))
	assert.Equal(t, NotErased, m.Erase(1))
	_, ok := m.Find(1)
	assert.False(t, ok)
}

func TestSplitMap_ForcesRehash(t *testing.T) {
	m, err := NewSplit[uint64, uint64](
		WithHasher[uint64, uint64](Uint64Hasher()),
		WithInitialCapacity[uint64, uint64](64),
	)
	require.NoError(t, err)

	const n = 3000
	for k := uint64(0); k < n; k++ {
		_, inserted := m.Insert(k, k*2)
		require.True(t, inserted)
	}
	assert.Equal(t, uint64(n), m.Size())
	assert.Greater(t, m.Capacity(), uint64(64))
	for k := uint64(0); k < n; k++ {
		v, ok := m.Find(k)
		require.True(t, ok)
		assert.Equal(t, k*2, *v)
	}
}

func TestSplitMap_IteratorVisitsAllLiveEntries(t *testing.T) {
	m := newTestSplitMap(t)
	want := map[uint64]uint64{}
	for k := uint64(0); k < 150; k++ {
		m.Insert(k, k+1)
		want[k] = k + 1
	}

	got := map[uint64]uint64{}
	for it := m.Begin(); !it.Done(); it.Advance() {
		got[it.Key()] = *it.Value()
	}
	assert.Equal(t, want, got)
}

func TestSplitMap_IteratorEmpty(t *testing.T) {
	m := newTestSplitMap(t)
	it := m.Begin()
	assert.True(t, it.Done())
}

func TestSplitMap_EmplaceConstructsOnlyWhenAbsent(t *testing.T) {
	m := newTestSplitMap(t)

	calls := 0
	v, inserted := m.Emplace(9, func() uint64 { calls++; return 90 })
	require.True(t, inserted)
	assert.Equal(t, uint64(90), *v)

	_, inserted = m.Emplace(9, func() uint64 { calls++; return 91 })
	assert.False(t, inserted)
	assert.Equal(t, 1, calls)
}

func TestSplitMap_EraseIteratorAndForEach(t *testing.T) {
	m := newTestSplitMap(t)
	m.Insert(1, 1)
	m.Insert(2, 2)

	it := m.Begin()
	key := it.Key()
	assert.Equal(t, Erased, m.EraseIterator(it))
	_, ok := m.Find(key)
	assert.False(t, ok)

	visited := 0
	m.ForEach(func(_ uint64, _ *uint64) bool {
		visited++
		return true
	})
	assert.Equal(t, 1, visited)
}

func TestSplitMap_RetreatWalksBackward(t *testing.T) {
	m := newTestSplitMap(t)
	for k := uint64(0); k < 8; k++ {
		m.Insert(k, k)
	}

	var forward []uint64
	for it := m.Begin(); !it.Done(); it.Advance() {
		forward = append(forward, it.Key())
	}

	it := m.End()
	var backward []uint64
	for range forward {
		it.Retreat()
		backward = append(backward, it.Key())
	}

	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}
	assert.Equal(t, forward, backward)
}

func TestSplitMap_Clear(t *testing.T) {
	m := newTestSplitMap(t)
	for k := uint64(0); k < 30; k++ {
		m.Insert(k, k)
	}
	m.Clear()
	assert.Zero(t, m.Size())
	_, ok := m.Find(0)
	assert.False(t, ok)
}
