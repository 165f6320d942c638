// Package super holds the superblock record and the translations between
// inode numbers, block numbers and byte offsets that follow from it.
//
// Layout:
//
//	[ superblock | inode table (NInodeBlocks) | data blocks ]
//	  0            1 .. NInodeBlocks            NInodeBlocks+1 .. NBlocks-1
package super

import (
	"errors"
	"fmt"
	"math"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

const SUPERBLK common.Bnum = 0

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrCorrupt        = errors.New("corrupt file system")
	ErrDiskTooSmall   = errors.New("disk too small")
	ErrInvalidInumber = errors.New("invalid inode number")
	ErrOutOfRange     = errors.New("out of range")
)

type Superblock struct {
	Magic        uint32
	NBlocks      uint32
	NInodeBlocks uint32
	NInodes      uint32
}

// MkSuperblock lays out a disk of nblocks blocks, reserving a tenth
// (rounded up) for the inode table.
func MkSuperblock(nblocks uint64) (*Superblock, error) {
	if nblocks > math.MaxUint32 {
		return nil, fmt.Errorf("%d blocks: %w", nblocks, ErrOutOfRange)
	}
	ninodeblks := util.RoundUp(nblocks, common.INODEBLKFRAC)
	if ninodeblks+2 > nblocks {
		return nil, fmt.Errorf("%d blocks leaves no data blocks: %w", nblocks, ErrDiskTooSmall)
	}
	return &Superblock{
		Magic:        common.MAGIC,
		NBlocks:      uint32(nblocks),
		NInodeBlocks: uint32(ninodeblks),
		NInodes:      uint32(ninodeblks * common.INODEBLK),
	}, nil
}

func (sb *Superblock) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(util.Pack32(sb.Magic, sb.NBlocks))
	enc.PutInt(util.Pack32(sb.NInodeBlocks, sb.NInodes))
	return enc.Finish()
}

func Decode(blk disk.Block) *Superblock {
	sb := &Superblock{}
	dec := marshal.NewDec(blk)
	sb.Magic, sb.NBlocks = util.Unpack32(dec.GetInt())
	sb.NInodeBlocks, sb.NInodes = util.Unpack32(dec.GetInt())
	return sb
}

// Validate checks that sb describes a file system that fits on a disk of
// size blocks.
func (sb *Superblock) Validate(size uint64) error {
	if sb.Magic != common.MAGIC {
		return fmt.Errorf("magic %#x: %w", sb.Magic, ErrInvalidMagic)
	}
	if uint64(sb.NInodes) != uint64(sb.NInodeBlocks)*common.INODEBLK {
		return fmt.Errorf("%d inodes in %d blocks: %w", sb.NInodes, sb.NInodeBlocks, ErrCorrupt)
	}
	if uint64(sb.NInodeBlocks)+2 > uint64(sb.NBlocks) || uint64(sb.NBlocks) > size {
		return fmt.Errorf("%d blocks (%d inode blocks) on a %d block disk: %w",
			sb.NBlocks, sb.NInodeBlocks, size, ErrCorrupt)
	}
	return nil
}

func (sb *Superblock) String() string {
	return fmt.Sprintf("super{nblocks %d ninodeblocks %d ninodes %d}",
		sb.NBlocks, sb.NInodeBlocks, sb.NInodes)
}

// CheckInum reports whether inum names an inode slot (0 is reserved).
func (sb *Superblock) CheckInum(inum common.Inum) error {
	if inum == common.NULLINUM || uint64(inum) >= uint64(sb.NInodes) {
		return fmt.Errorf("inode %d: %w", inum, ErrInvalidInumber)
	}
	return nil
}

// InodeBlock returns the inode-table block holding inum.
func (sb *Superblock) InodeBlock(inum common.Inum) (common.Bnum, error) {
	blk := uint64(inum)/common.INODEBLK + 1
	if blk > uint64(sb.NInodeBlocks) {
		return common.NULLBNUM, fmt.Errorf("inode %d in block %d: %w", inum, blk, ErrOutOfRange)
	}
	return common.Bnum(blk), nil
}

func Slot(inum common.Inum) uint64 {
	return uint64(inum) % common.INODEBLK
}

// Inum is the global inode number of slot in inode-table block blk.
func Inum(blk common.Bnum, slot uint64) common.Inum {
	return common.Inum((uint64(blk)-1)*common.INODEBLK + slot)
}

func (sb *Superblock) Inum2Addr(inum common.Inum) (addr.Addr, error) {
	blk, err := sb.InodeBlock(inum)
	if err != nil {
		return addr.Addr{}, err
	}
	return addr.MkAddr(blk, Slot(inum)*common.INODESZ), nil
}

// DataStart is the first block past the inode table.
func (sb *Superblock) DataStart() common.Bnum {
	return common.Bnum(sb.NInodeBlocks + 1)
}

// IsData reports whether bn may hold file data or an indirect block.
func (sb *Superblock) IsData(bn common.Bnum) bool {
	return bn >= sb.DataStart() && uint32(bn) < sb.NBlocks
}

// DirectIndex is the direct pointer covering byte off; ok is false once off
// is past the direct blocks.
func DirectIndex(off uint64) (uint64, bool) {
	i := off / disk.BlockSize
	return i, i < common.NDIRECT
}

// IndirectSlot is the indirect-block entry covering byte off.
func IndirectSlot(off uint64) (uint64, error) {
	i := off / disk.BlockSize
	if i < common.NDIRECT || i >= common.MAXFILEBLKS {
		return 0, fmt.Errorf("offset %d has no indirect slot: %w", off, ErrOutOfRange)
	}
	return i - common.NDIRECT, nil
}
