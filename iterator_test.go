package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_EmptyTable(t *testing.T) {
	tbl := newTestTable(t)
	it := tbl.Begin()
	assert.True(t, it.Done())
	assert.Equal(t, tbl.End(), it)
}

func TestIterator_OneElement(t *testing.T) {
	tbl := newTestTable(t)
	tbl.Insert(5, 50)

	it := tbl.Begin()
	require.False(t, it.Done())
	assert.Equal(t, uint64(5), it.Key())
	assert.Equal(t, uint64(50), *it.Value())

	it.Advance()
	assert.True(t, it.Done())
}

func TestIterator_VisitsEveryLiveEntry(t *testing.T) {
	tbl := newTestTable(t)
	want := map[uint64]uint64{}
	for k := uint64(0); k < 200; k++ {
		tbl.Insert(k, k*2)
		want[k] = k * 2
	}

	got := map[uint64]uint64{}
	for it := tbl.Begin(); !it.Done(); it.Advance() {
		got[it.Key()] = *it.Value()
	}
	assert.Equal(t, want, got)
}

func TestIterator_SkipsTombstones(t *testing.T) {
	tbl := newTestTable(t)
	for k := uint64(0); k < 20; k++ {
		tbl.Insert(k, k)
	}
	for k := uint64(0); k < 20; k += 2 {
		tbl.Erase(k)
	}

	count := 0
	for it := tbl.Begin(); !it.Done(); it.Advance() {
		assert.NotZero(t, it.Key()%2)
		count++
	}
	assert.Equal(t, 10, count)
}

func TestIterator_RetreatIsSymmetric(t *testing.T) {
	tbl := newTestTable(t)
	for k := uint64(0); k < 10; k++ {
		tbl.Insert(k, k)
	}

	var forward []uint64
	for it := tbl.Begin(); !it.Done(); it.Advance() {
		forward = append(forward, it.Key())
	}

	it := tbl.End()
	var backward []uint64
	for i := len(forward) - 1; i >= 0; i-- {
		it.Retreat()
		backward = append(backward, it.Key())
	}

	var reversedForward []uint64
	for i := len(forward) - 1; i >= 0; i-- {
		reversedForward = append(reversedForward, forward[i])
	}
	assert.Equal(t, reversedForward, backward)
}

func TestForEach_StopsEarly(t *testing.T) {
	tbl := newTestTable(t)
	for k := uint64(0); k < 50; k++ {
		tbl.Insert(k, k)
	}

	visited := 0
	tbl.ForEach(func(key uint64, value *uint64) bool {
		visited++
		return visited < 10
	})
	assert.Equal(t, 10, visited)
}

func TestEraseIterator(t *testing.T) {
	tbl := newTestTable(t)
	tbl.Insert(1, 1)
	tbl.Insert(2, 2)

	it := tbl.Begin()
	key := it.Key()
	assert.Equal(t, Erased, tbl.EraseIterator(it))
	_, ok := tbl.Find(key)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), tbl.Size())
}
