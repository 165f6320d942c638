package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(1, max)

	assert.Equal(max-1, a.NumFree(), "everything (but 0) should be initially free")

	n := a.AllocNum()
	assert.NotEqual(uint64(0), n, "should not allocate 0")

	a.MarkUsed(n + 1)
	n2 := a.AllocNum()
	assert.NotEqual(n+1, n2, "should not allocate something marked used")

	assert.Equal(max-4, a.NumFree(), "should have used 4 items")

	a.FreeNum(n)
	a.FreeNum(n2)
	assert.Equal(max-2, a.NumFree(), "should have freed")

	a.FreeNum(n)
	assert.Equal(max-2, a.NumFree(), "freeing twice is a no-op")
}

func TestAllocLowestFirst(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(11, 20)
	for n := uint64(0); n < 11; n++ {
		assert.True(a.IsUsed(n), "reserved %d", n)
	}
	assert.Equal(uint64(11), a.AllocNum())
	assert.Equal(uint64(12), a.AllocNum())
	a.FreeNum(11)
	assert.Equal(uint64(11), a.AllocNum(), "lowest free number is reused")
}

func TestAllocExhausted(t *testing.T) {
	assert := assert.New(t)
	a := MkAlloc(3, 5)
	assert.Equal(uint64(2), a.NumFree())
	assert.Equal(uint64(3), a.AllocNum())
	assert.Equal(uint64(4), a.AllocNum())
	assert.Equal(uint64(0), a.AllocNum(), "0 signals no free number")
	assert.Equal(uint64(0), a.NumFree())
}

func TestFreeReserved(t *testing.T) {
	a := MkAlloc(3, 5)
	assert.Panics(t, func() { a.FreeNum(2) })
	assert.Panics(t, func() { a.FreeNum(5) })
}

func TestSnapshot(t *testing.T) {
	a := MkAlloc(2, 16)
	s := a.Snapshot()
	assert.Equal(t, []byte{0x3, 0x0}, s)
	a.AllocNum()
	assert.Equal(t, []byte{0x3, 0x0}, s, "snapshot is a copy")
	assert.Equal(t, []byte{0x7, 0x0}, a.Snapshot())
}
