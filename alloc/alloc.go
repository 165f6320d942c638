package alloc

import (
	"sync"

	"github.com/mit-pdos/go-simplefs/util"
)

// Alloc uses an in-memory bit map to allocate and free numbers. Bit n of the
// map corresponds to number n. Numbers below start are permanently in use.
type Alloc struct {
	lock   *sync.Mutex // protects bitmap
	start  uint64
	max    uint64
	bitmap []byte
}

func MkAlloc(start uint64, max uint64) *Alloc {
	if start > max {
		panic("MkAlloc")
	}
	a := &Alloc{
		lock:   new(sync.Mutex),
		start:  start,
		max:    max,
		bitmap: make([]byte, util.RoundUp(max, 8)),
	}
	for n := uint64(0); n < start; n++ {
		a.markUsed(n)
	}
	return a
}

func (a *Alloc) markUsed(n uint64) {
	a.bitmap[n/8] = a.bitmap[n/8] | (1 << (n % 8))
}

func (a *Alloc) isUsed(n uint64) bool {
	return a.bitmap[n/8]&(1<<(n%8)) != 0
}

func (a *Alloc) MarkUsed(n uint64) {
	if n >= a.max {
		panic("MarkUsed")
	}
	a.lock.Lock()
	a.markUsed(n)
	a.lock.Unlock()
}

func (a *Alloc) IsUsed(n uint64) bool {
	if n >= a.max {
		return false
	}
	a.lock.Lock()
	used := a.isUsed(n)
	a.lock.Unlock()
	return used
}

// AllocNum returns the lowest free number at or past start, or 0 if every
// number is in use.
func (a *Alloc) AllocNum() uint64 {
	var num uint64 = 0
	a.lock.Lock()
	for n := a.start; n < a.max; n++ {
		if !a.isUsed(n) {
			a.markUsed(n)
			num = n
			break
		}
	}
	a.lock.Unlock()
	util.DPrintf(15, "AllocNum: %d\n", num)
	return num
}

// FreeNum releases num; freeing a free number is a no-op.
func (a *Alloc) FreeNum(num uint64) {
	if num < a.start || num >= a.max {
		panic("FreeNum")
	}
	a.lock.Lock()
	a.bitmap[num/8] = a.bitmap[num/8] & ^(1 << (num % 8))
	a.lock.Unlock()
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumFree counts the free numbers in [start, max).
func (a *Alloc) NumFree() uint64 {
	a.lock.Lock()
	var used uint64
	for _, b := range a.bitmap {
		used += popCnt(b)
	}
	a.lock.Unlock()
	return a.max - used
}

// Snapshot returns a copy of the bit map.
func (a *Alloc) Snapshot() []byte {
	a.lock.Lock()
	bm := make([]byte, len(a.bitmap))
	copy(bm, a.bitmap)
	a.lock.Unlock()
	return bm
}
