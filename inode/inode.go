package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

// On-disk record, 32-bit little-endian fields:
//
//	valid | size | direct[0..4] | indirect
type Inode struct {
	Inum     common.Inum
	Valid    bool
	Size     uint64
	Direct   [common.NDIRECT]common.Bnum
	Indirect common.Bnum
}

// MkInode returns a fresh, empty, valid inode.
func MkInode(inum common.Inum) *Inode {
	return &Inode{Inum: inum, Valid: true}
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d valid %v size %d direct %v indirect %d",
		ip.Inum, ip.Valid, ip.Size, ip.Direct, ip.Indirect)
}

// NBlocks is the number of data blocks the inode's size covers.
func (ip *Inode) NBlocks() uint64 {
	return util.RoundUp(ip.Size, disk.BlockSize)
}

func (ip *Inode) NDirect() uint64 {
	return util.Min(ip.NBlocks(), common.NDIRECT)
}

// NIndirect is the number of live entries in the indirect block.
func (ip *Inode) NIndirect() uint64 {
	n := ip.NBlocks()
	if n <= common.NDIRECT {
		return 0
	}
	return n - common.NDIRECT
}

func (ip *Inode) Encode(b *buf.Buf) {
	if b.Sz != common.INODESZ {
		panic("inode encode")
	}
	var valid uint32
	if ip.Valid {
		valid = 1
	}
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt(util.Pack32(valid, uint32(ip.Size)))
	enc.PutInt(util.Pack32(uint32(ip.Direct[0]), uint32(ip.Direct[1])))
	enc.PutInt(util.Pack32(uint32(ip.Direct[2]), uint32(ip.Direct[3])))
	enc.PutInt(util.Pack32(uint32(ip.Direct[4]), uint32(ip.Indirect)))
	copy(b.Data, enc.Finish())
}

func Decode(b *buf.Buf, inum common.Inum) *Inode {
	ip := &Inode{Inum: inum}
	dec := marshal.NewDec(b.Data)
	valid, size := util.Unpack32(dec.GetInt())
	ip.Valid = valid != 0
	ip.Size = uint64(size)
	for i := uint64(0); i < common.NDIRECT-1; i += 2 {
		lo, hi := util.Unpack32(dec.GetInt())
		ip.Direct[i], ip.Direct[i+1] = common.Bnum(lo), common.Bnum(hi)
	}
	d4, ind := util.Unpack32(dec.GetInt())
	ip.Direct[4], ip.Indirect = common.Bnum(d4), common.Bnum(ind)
	return ip
}

// PtrBlock is an indirect block viewed as block numbers.
type PtrBlock [common.NINDIRECT]common.Bnum

func (pb *PtrBlock) Encode() disk.Block {
	words := make([]uint64, common.NINDIRECT/2)
	for i := range words {
		words[i] = util.Pack32(uint32(pb[2*i]), uint32(pb[2*i+1]))
	}
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInts(words)
	return enc.Finish()
}

func DecodePtrs(blk disk.Block) *PtrBlock {
	pb := new(PtrBlock)
	dec := marshal.NewDec(blk)
	words := dec.GetInts(common.NINDIRECT / 2)
	for i, w := range words {
		lo, hi := util.Unpack32(w)
		pb[2*i], pb[2*i+1] = common.Bnum(lo), common.Bnum(hi)
	}
	return pb
}
