package fs

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/buf"
	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

func (fs *Fs) loadInode(st *mounted, inum common.Inum) (*inode.Inode, *buf.Buf, error) {
	if err := st.super.CheckInum(inum); err != nil {
		return nil, nil, err
	}
	a, err := st.super.Inum2Addr(inum)
	if err != nil {
		return nil, nil, err
	}
	blk, err := fs.d.Read(uint64(a.Blkno))
	if err != nil {
		return nil, nil, err
	}
	b := buf.MkBufLoad(a, common.INODESZ, blk)
	return inode.Decode(b, inum), b, nil
}

// getInode loads a valid inode.
func (fs *Fs) getInode(st *mounted, inum common.Inum) (*inode.Inode, *buf.Buf, error) {
	ip, b, err := fs.loadInode(st, inum)
	if err != nil {
		return nil, nil, err
	}
	if !ip.Valid {
		return nil, nil, fmt.Errorf("inode %d: %w", inum, ErrInvalidInode)
	}
	return ip, b, nil
}

func (fs *Fs) storeInode(ip *inode.Inode, b *buf.Buf) error {
	ip.Encode(b)
	return b.WriteDirect(fs.d)
}

// Create allocates the lowest-numbered free inode. Inode numbers start at 1.
func (fs *Fs) Create() (common.Inum, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return common.NULLINUM, err
	}
	for bn := uint64(1); bn <= uint64(st.super.NInodeBlocks); bn++ {
		blk, err := fs.d.Read(bn)
		if err != nil {
			return common.NULLINUM, err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			inum := super.Inum(common.Bnum(bn), slot)
			if inum == common.NULLINUM {
				continue
			}
			b := buf.MkBufLoad(addr.MkAddr(common.Bnum(bn), slot*common.INODESZ), common.INODESZ, blk)
			if inode.Decode(b, inum).Valid {
				continue
			}
			inode.MkInode(inum).Encode(b)
			if err := fs.d.Write(bn, blk); err != nil {
				return common.NULLINUM, err
			}
			st.balloc.MarkUsed(bn)
			util.DPrintf(3, "Create: inode %d\n", inum)
			return inum, nil
		}
	}
	util.DPrintf(10, "Create: no free inode among %d\n", st.super.NInodes)
	return common.NULLINUM, ErrTableFull
}

// Delete invalidates inum and returns its blocks to the free map. A damaged
// inode can still be deleted; only its in-range blocks are freed.
func (fs *Fs) Delete(inum common.Inum) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return err
	}
	ip, b, err := fs.getInode(st, inum)
	if err != nil {
		return err
	}
	bl, err := readBlockList(fs.d, st.super, ip)
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		util.DPrintf(10, "Delete: %v\n", err)
	}
	if err := fs.storeInode(&inode.Inode{Inum: inum}, b); err != nil {
		return err
	}
	for _, bn := range bl.all() {
		st.balloc.FreeNum(uint64(bn))
	}
	util.DPrintf(3, "Delete: inode %d freed %v\n", inum, bl.all())
	return nil
}

// Size returns the length of inum in bytes.
func (fs *Fs) Size(inum common.Inum) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return 0, err
	}
	ip, _, err := fs.getInode(st, inum)
	if err != nil {
		return 0, err
	}
	return ip.Size, nil
}
