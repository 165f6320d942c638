package inode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
)

func TestEncodeLayout(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	b := buf.MkBufLoad(addr.MkAddr(1, 2*common.INODESZ), common.INODESZ, blk)

	ip := MkInode(2)
	ip.Size = 5000
	ip.Direct = [common.NDIRECT]common.Bnum{11, 12, 0, 0, 0}
	ip.Indirect = 40
	ip.Encode(b)

	rec := blk[2*common.INODESZ:]
	field := func(i int) uint32 { return binary.LittleEndian.Uint32(rec[4*i:]) }
	assert.Equal(uint32(1), field(0))
	assert.Equal(uint32(5000), field(1))
	assert.Equal(uint32(11), field(2))
	assert.Equal(uint32(12), field(3))
	assert.Equal(uint32(0), field(6))
	assert.Equal(uint32(40), field(7))
	assert.Equal(byte(0), blk[common.INODESZ-1], "neighbouring slot untouched")
	assert.Equal(byte(0), blk[3*common.INODESZ], "neighbouring slot untouched")

	assert.Equal(ip, Decode(b, 2))
}

func TestDecodeZero(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	b := buf.MkBufLoad(addr.MkAddr(1, 0), common.INODESZ, blk)
	ip := Decode(b, 1)
	assert.False(t, ip.Valid)
	assert.Equal(t, uint64(0), ip.Size)
	for _, bn := range ip.Direct {
		assert.True(t, bn.IsNull())
	}
	assert.True(t, ip.Indirect.IsNull())
}

func TestBlockCounts(t *testing.T) {
	assert := assert.New(t)
	ip := MkInode(1)
	assert.Equal(uint64(0), ip.NBlocks())

	ip.Size = 5 * disk.BlockSize
	assert.Equal(uint64(5), ip.NDirect())
	assert.Equal(uint64(0), ip.NIndirect())

	ip.Size = 5*disk.BlockSize + 1
	assert.Equal(uint64(6), ip.NBlocks())
	assert.Equal(uint64(5), ip.NDirect())
	assert.Equal(uint64(1), ip.NIndirect())

	ip.Size = 10
	assert.Equal(uint64(1), ip.NDirect())
}

func TestPtrBlock(t *testing.T) {
	pb := new(PtrBlock)
	pb[0] = 17
	pb[1] = 18
	pb[common.NINDIRECT-1] = 99
	blk := pb.Encode()
	assert.Equal(t, disk.BlockSize, uint64(len(blk)))
	assert.Equal(t, uint32(17), binary.LittleEndian.Uint32(blk[0:]))
	assert.Equal(t, uint32(18), binary.LittleEndian.Uint32(blk[4:]))
	assert.Equal(t, uint32(99), binary.LittleEndian.Uint32(blk[disk.BlockSize-4:]))
	assert.Equal(t, pb, DecodePtrs(blk))
}
