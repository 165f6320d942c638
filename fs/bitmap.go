package fs

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

// blockList is every block an inode owns according to its size.
type blockList struct {
	direct   []common.Bnum
	indirect common.Bnum
	ptrs     []common.Bnum // live entries of the indirect block
}

func (bl *blockList) all() []common.Bnum {
	bns := append([]common.Bnum{}, bl.direct...)
	if !bl.indirect.IsNull() {
		bns = append(bns, bl.indirect)
	}
	return append(bns, bl.ptrs...)
}

func checkData(sb *super.Superblock, ip *inode.Inode, bn common.Bnum) error {
	if !sb.IsData(bn) {
		return fmt.Errorf("inode %d points at block %d: %w", ip.Inum, bn, ErrCorrupt)
	}
	return nil
}

// readBlockList collects ip's blocks. Null pointers are skipped. A pointer
// outside the data region is left out of the list and reported as
// ErrCorrupt alongside what could be collected.
func readBlockList(d disk.Disk, sb *super.Superblock, ip *inode.Inode) (*blockList, error) {
	bl := &blockList{}
	if ip.Size > common.MAXFILESZ {
		return bl, fmt.Errorf("inode %d size %d: %w", ip.Inum, ip.Size, ErrCorrupt)
	}
	var corrupt error
	keep := func(bn common.Bnum) bool {
		if bn.IsNull() {
			return false
		}
		if err := checkData(sb, ip, bn); err != nil {
			if corrupt == nil {
				corrupt = err
			}
			return false
		}
		return true
	}
	for _, bn := range ip.Direct[:ip.NDirect()] {
		if keep(bn) {
			bl.direct = append(bl.direct, bn)
		}
	}
	nind := ip.NIndirect()
	if nind == 0 {
		return bl, corrupt
	}
	if err := checkData(sb, ip, ip.Indirect); err != nil {
		return bl, err
	}
	bl.indirect = ip.Indirect
	blk, err := d.Read(uint64(ip.Indirect))
	if err != nil {
		return bl, err
	}
	ptrs := inode.DecodePtrs(blk)
	for _, bn := range ptrs[:nind] {
		if keep(bn) {
			bl.ptrs = append(bl.ptrs, bn)
		}
	}
	return bl, corrupt
}

// forEachInode calls f on every inode slot except the reserved inode 0.
func forEachInode(d disk.Disk, sb *super.Superblock, f func(ip *inode.Inode) error) error {
	for bn := uint64(1); bn <= uint64(sb.NInodeBlocks); bn++ {
		blk, err := d.Read(bn)
		if err != nil {
			return fmt.Errorf("read inode block %d: %w", bn, err)
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			inum := super.Inum(common.Bnum(bn), slot)
			if inum == common.NULLINUM {
				continue
			}
			b := buf.MkBufLoad(addr.MkAddr(common.Bnum(bn), slot*common.INODESZ), common.INODESZ, blk)
			if err := f(inode.Decode(b, inum)); err != nil {
				return err
			}
		}
	}
	return nil
}

// rebuildBitmap derives the free-block bitmap from the superblock and the
// inode table. Bad pointers are logged and skipped; the blocks an inode
// points at correctly stay in use.
func rebuildBitmap(d disk.Disk, sb *super.Superblock) (*alloc.Alloc, error) {
	balloc := alloc.MkAlloc(uint64(sb.DataStart()), uint64(sb.NBlocks))
	err := forEachInode(d, sb, func(ip *inode.Inode) error {
		if !ip.Valid {
			return nil
		}
		bl, err := readBlockList(d, sb, ip)
		if err != nil {
			if !errors.Is(err, ErrCorrupt) {
				return err
			}
			util.DPrintf(10, "rebuildBitmap: %v\n", err)
		}
		for _, bn := range bl.all() {
			if balloc.IsUsed(uint64(bn)) {
				util.DPrintf(10, "rebuildBitmap: block %d of inode %d is claimed twice\n", bn, ip.Inum)
			}
			balloc.MarkUsed(uint64(bn))
		}
		util.DPrintf(10, "rebuildBitmap: %v uses %v\n", ip, bl.all())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balloc, nil
}
