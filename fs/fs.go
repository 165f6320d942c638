// Package fs is a flat, inode-numbered file system on a block device.
//
// Format lays out a superblock and a zeroed inode table. Mount reads the
// superblock back and rebuilds the free-block bitmap by walking every valid
// inode; the bitmap is never written to disk. Files are addressed by inode
// number and hold up to common.NDIRECT direct blocks plus one indirect block
// of common.NINDIRECT block pointers.
package fs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mit-pdos/go-simplefs/alloc"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/super"
	"github.com/mit-pdos/go-simplefs/util"
)

var (
	ErrAlreadyMounted = errors.New("file system already mounted")
	ErrNotMounted     = errors.New("file system not mounted")
	ErrInvalidInode   = errors.New("invalid inode")
	ErrNoFreeBlocks   = errors.New("no free blocks")
	ErrTableFull      = errors.New("inode table full")

	ErrInvalidMagic   = super.ErrInvalidMagic
	ErrInvalidInumber = super.ErrInvalidInumber
	ErrOutOfRange     = super.ErrOutOfRange
	ErrCorrupt        = super.ErrCorrupt
	ErrDiskTooSmall   = super.ErrDiskTooSmall
)

// mounted is the state of one mount session.
type mounted struct {
	super  *super.Superblock
	balloc *alloc.Alloc
}

// Fs is a file system on d. One lock serializes all operations.
type Fs struct {
	mu *sync.Mutex
	d  disk.Disk
	st *mounted // nil until Mount
}

func New(d disk.Disk) *Fs {
	return &Fs{
		mu: new(sync.Mutex),
		d:  d,
	}
}

// Format writes a new superblock and clears the inode table. The disk must
// not be mounted.
func (fs *Fs) Format() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.st != nil {
		return ErrAlreadyMounted
	}
	sz, err := fs.d.Size()
	if err != nil {
		return err
	}
	sb, err := super.MkSuperblock(sz)
	if err != nil {
		return err
	}
	if err := fs.d.Write(uint64(super.SUPERBLK), sb.Encode()); err != nil {
		return fmt.Errorf("write superblock: %w", err)
	}
	zero := make(disk.Block, disk.BlockSize)
	for bn := uint64(1); bn <= uint64(sb.NInodeBlocks); bn++ {
		if err := fs.d.Write(bn, zero); err != nil {
			return fmt.Errorf("clear inode block %d: %w", bn, err)
		}
	}
	util.DPrintf(1, "Format: %v\n", sb)
	return fs.d.Barrier()
}

// Mount validates the superblock and rebuilds the free-block bitmap.
// Mounting again discards the previous session's bitmap.
func (fs *Fs) Mount() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	sz, err := fs.d.Size()
	if err != nil {
		return err
	}
	blk, err := fs.d.Read(uint64(super.SUPERBLK))
	if err != nil {
		return fmt.Errorf("read superblock: %w", err)
	}
	sb := super.Decode(blk)
	if err := sb.Validate(sz); err != nil {
		return err
	}
	balloc, err := rebuildBitmap(fs.d, sb)
	if err != nil {
		return err
	}
	fs.st = &mounted{super: sb, balloc: balloc}
	util.DPrintf(1, "Mount: %v free %d\n", sb, balloc.NumFree())
	return nil
}

func (fs *Fs) session() (*mounted, error) {
	if fs.st == nil {
		return nil, ErrNotMounted
	}
	return fs.st, nil
}

// NumFree reports the number of free data blocks.
func (fs *Fs) NumFree() (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return 0, err
	}
	return st.balloc.NumFree(), nil
}

// Bitmap returns a copy of the free-block bitmap; bit n is set if block n is
// in use.
func (fs *Fs) Bitmap() ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	st, err := fs.session()
	if err != nil {
		return nil, err
	}
	return st.balloc.Snapshot(), nil
}
