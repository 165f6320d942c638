package fs

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

// A grant is a block the cursor allocated: the data block for byte pos, or
// the indirect block when ind is set.
type grant struct {
	bn  common.Bnum
	pos uint64
	ind bool
}

// cursor walks one inode's data blocks in block-sized chunks. The indirect
// block is read at most once and written back by flush.
type cursor struct {
	fs        *Fs
	st        *mounted
	ip        *inode.Inode
	ptrs      *inode.PtrBlock
	ptrsDirty bool
	grants    []grant
}

func (c *cursor) loadPtrs() error {
	if c.ptrs != nil {
		return nil
	}
	if err := checkData(c.st.super, c.ip, c.ip.Indirect); err != nil {
		return err
	}
	blk, err := c.fs.d.Read(uint64(c.ip.Indirect))
	if err != nil {
		return err
	}
	c.ptrs = inode.DecodePtrs(blk)
	return nil
}

// lookup returns the block holding byte pos, which must be below the
// inode's size.
func (c *cursor) lookup(pos uint64) (common.Bnum, error) {
	var bn common.Bnum
	if i, ok := super.DirectIndex(pos); ok {
		bn = c.ip.Direct[i]
	} else {
		slot, err := super.IndirectSlot(pos)
		if err != nil {
			return common.NULLBNUM, err
		}
		if err := c.loadPtrs(); err != nil {
			return common.NULLBNUM, err
		}
		bn = c.ptrs[slot]
	}
	if err := checkData(c.st.super, c.ip, bn); err != nil {
		return common.NULLBNUM, err
	}
	return bn, nil
}

func (c *cursor) allocBlock() (common.Bnum, error) {
	n := c.st.balloc.AllocNum()
	if n == 0 {
		return common.NULLBNUM, ErrNoFreeBlocks
	}
	util.DPrintf(5, "allocBlock: inode %d gets block %d\n", c.ip.Inum, n)
	return common.Bnum(n), nil
}

// undo clears the pointer to g's block and returns the block to the free map.
func (c *cursor) undo(g grant) {
	if g.ind {
		c.ip.Indirect = common.NULLBNUM
		c.ptrs = nil
		c.ptrsDirty = false
	} else if i, ok := super.DirectIndex(g.pos); ok {
		c.ip.Direct[i] = common.NULLBNUM
	} else if slot, err := super.IndirectSlot(g.pos); err == nil && c.ptrs != nil {
		c.ptrs[slot] = common.NULLBNUM
	}
	c.st.balloc.FreeNum(uint64(g.bn))
	util.DPrintf(5, "undo: inode %d gives back block %d\n", c.ip.Inum, g.bn)
}

// rollback undoes the grants made since mark, newest first.
func (c *cursor) rollback(mark int) {
	for i := len(c.grants) - 1; i >= mark; i-- {
		c.undo(c.grants[i])
	}
	c.grants = c.grants[:mark]
}

// bmap returns the block holding byte pos, allocating it (and the indirect
// block) if needed. fresh reports a newly allocated block.
func (c *cursor) bmap(pos uint64) (common.Bnum, bool, error) {
	if i, ok := super.DirectIndex(pos); ok {
		if !c.ip.Direct[i].IsNull() {
			bn, err := c.lookup(pos)
			return bn, false, err
		}
		bn, err := c.allocBlock()
		if err != nil {
			return common.NULLBNUM, false, err
		}
		c.ip.Direct[i] = bn
		c.grants = append(c.grants, grant{bn: bn, pos: pos})
		return bn, true, nil
	}

	slot, err := super.IndirectSlot(pos)
	if err != nil {
		return common.NULLBNUM, false, err
	}
	if c.ip.Indirect.IsNull() {
		ind, err := c.allocBlock()
		if err != nil {
			return common.NULLBNUM, false, err
		}
		c.ip.Indirect = ind
		c.ptrs = new(inode.PtrBlock)
		c.grants = append(c.grants, grant{bn: ind, ind: true})
	} else if err := c.loadPtrs(); err != nil {
		return common.NULLBNUM, false, err
	}
	if !c.ptrs[slot].IsNull() {
		bn, err := c.lookup(pos)
		return bn, false, err
	}
	bn, err := c.allocBlock()
	if err != nil {
		return common.NULLBNUM, false, err
	}
	c.ptrs[slot] = bn
	c.ptrsDirty = true
	c.grants = append(c.grants, grant{bn: bn, pos: pos})
	return bn, true, nil
}

// write copies data to the file at off, growing the inode's size as chunks
// land. It stops at the first failure and returns the bytes written so far;
// blocks allocated for the failed chunk are given back.
func (c *cursor) write(off uint64, data []byte) (uint64, error) {
	var n uint64
	for n < uint64(len(data)) {
		pos := off + n
		mark := len(c.grants)
		n1, err := c.writeChunk(pos, data[n:])
		if err != nil {
			c.rollback(mark)
			return n, err
		}
		n += n1
		if pos+n1 > c.ip.Size {
			c.ip.Size = pos + n1
		}
	}
	return n, nil
}

func (c *cursor) writeChunk(pos uint64, data []byte) (uint64, error) {
	bn, fresh, err := c.bmap(pos)
	if err != nil {
		return 0, err
	}
	boff := pos % disk.BlockSize
	chunk := util.Min(disk.BlockSize-boff, uint64(len(data)))
	var blk disk.Block
	if chunk == disk.BlockSize {
		blk = data[:chunk]
	} else {
		if fresh {
			blk = make(disk.Block, disk.BlockSize)
		} else if blk, err = c.fs.d.Read(uint64(bn)); err != nil {
			return 0, err
		}
		copy(blk[boff:], data[:chunk])
	}
	if err := c.fs.d.Write(uint64(bn), blk); err != nil {
		return 0, err
	}
	util.DPrintf(5, "write: inode %d pos %d block %d len %d\n", c.ip.Inum, pos, bn, chunk)
	return chunk, nil
}

func (c *cursor) flush() error {
	if !c.ptrsDirty {
		return nil
	}
	c.ptrsDirty = false
	return c.fs.d.Write(uint64(c.ip.Indirect), c.ptrs.Encode())
}

// Read returns up to count bytes of inum starting at off. Reading at the end
// of the file returns no data; reading past it fails with ErrOutOfRange.
func (fs *Fs) Read(inum common.Inum, off uint64, count uint64) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return nil, err
	}
	ip, _, err := fs.getInode(st, inum)
	if err != nil {
		return nil, err
	}
	if ip.Size > common.MAXFILESZ {
		return nil, fmt.Errorf("inode %d size %d: %w", inum, ip.Size, ErrCorrupt)
	}
	if off > ip.Size {
		return nil, fmt.Errorf("read inode %d at %d past size %d: %w", inum, off, ip.Size, ErrOutOfRange)
	}
	n := util.Min(count, ip.Size-off)
	data := make([]byte, 0, n)
	c := &cursor{fs: fs, st: st, ip: ip}
	for uint64(len(data)) < n {
		pos := off + uint64(len(data))
		bn, err := c.lookup(pos)
		if err != nil {
			return nil, err
		}
		blk, err := fs.d.Read(uint64(bn))
		if err != nil {
			return nil, err
		}
		boff := pos % disk.BlockSize
		chunk := util.Min(disk.BlockSize-boff, n-uint64(len(data)))
		data = append(data, blk[boff:boff+chunk]...)
	}
	return data, nil
}

// Write stores data in inum at off, allocating blocks as needed, and returns
// the number of bytes written. Writing past the end first fills the gap with
// zeros. If the disk fills up part way, Write keeps what it wrote and
// returns the short count with a nil error; ErrNoFreeBlocks is returned only
// when nothing could be written.
func (fs *Fs) Write(inum common.Inum, off uint64, data []byte) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return 0, err
	}
	ip, b, err := fs.getInode(st, inum)
	if err != nil {
		return 0, err
	}
	end := off + uint64(len(data))
	if end < off || end > common.MAXFILESZ {
		return 0, fmt.Errorf("write inode %d [%d, %d) past max size %d: %w",
			inum, off, end, common.MAXFILESZ, ErrOutOfRange)
	}
	if len(data) == 0 {
		return 0, nil
	}

	c := &cursor{fs: fs, st: st, ip: ip}
	size := ip.Size
	var n uint64
	if off > ip.Size {
		_, err = c.write(ip.Size, make([]byte, off-ip.Size))
	}
	if err == nil {
		n, err = c.write(off, data)
	}
	if err != nil && n == 0 {
		// none of data landed, so the gap goes too
		c.rollback(0)
		ip.Size = size
		util.DPrintf(10, "Write: inode %d at %d failed: %v\n", inum, off, err)
		return 0, err
	}
	if ferr := c.flush(); ferr != nil && err == nil {
		err = ferr
	}
	if serr := fs.storeInode(ip, b); serr != nil && err == nil {
		err = serr
	}
	if errors.Is(err, ErrNoFreeBlocks) && n > 0 {
		util.DPrintf(10, "Write: inode %d short write %d of %d\n", inum, n, len(data))
		err = nil
	}
	return n, err
}
