package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/inode"
	"github.com/mit-pdos/go-simplefs/super"
)

type InodeReport struct {
	Inum         common.Inum
	Size         uint64
	Direct       []common.Bnum
	Indirect     common.Bnum
	IndirectData []common.Bnum
}

// Report describes the on-disk state: the superblock and every valid inode.
type Report struct {
	Super      *super.Superblock
	MagicValid bool
	Inodes     []InodeReport
}

// Debug scans the disk directly; the file system need not be mounted. A
// disk with a bad magic number yields a report with MagicValid unset and
// no inodes. Out-of-range pointers are left out of an inode's lists.
func (fs *Fs) Debug() (*Report, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	blk, err := fs.d.Read(uint64(super.SUPERBLK))
	if err != nil {
		return nil, err
	}
	r := &Report{Super: super.Decode(blk)}
	if r.Super.Magic != common.MAGIC {
		return r, nil
	}
	r.MagicValid = true
	sz, err := fs.d.Size()
	if err != nil {
		return nil, err
	}
	if err := r.Super.Validate(sz); err != nil {
		return r, err
	}
	err = forEachInode(fs.d, r.Super, func(ip *inode.Inode) error {
		if !ip.Valid {
			return nil
		}
		bl, err := readBlockList(fs.d, r.Super, ip)
		if err != nil && !errors.Is(err, ErrCorrupt) {
			return err
		}
		r.Inodes = append(r.Inodes, InodeReport{
			Inum:         ip.Inum,
			Size:         ip.Size,
			Direct:       bl.direct,
			Indirect:     bl.indirect,
			IndirectData: bl.ptrs,
		})
		return nil
	})
	return r, err
}

func bnums(bns []common.Bnum) string {
	var b bytes.Buffer
	for _, bn := range bns {
		fmt.Fprintf(&b, " %d", bn)
	}
	return b.String()
}

// WriteTo prints the report the way the simplefs shell's debug command does.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "superblock:\n")
	if !r.MagicValid {
		fmt.Fprintf(&b, "simplefs: Error! Magic number is invalid.\n")
		return b.WriteTo(w)
	}
	fmt.Fprintf(&b, "magic number is valid\n")
	fmt.Fprintf(&b, "    %d blocks on disk\n", r.Super.NBlocks)
	fmt.Fprintf(&b, "    %d blocks for inodes\n", r.Super.NInodeBlocks)
	fmt.Fprintf(&b, "    %d inodes total\n", r.Super.NInodes)
	for _, ir := range r.Inodes {
		fmt.Fprintf(&b, "inode %d:\n", ir.Inum)
		fmt.Fprintf(&b, "    size: %d bytes\n", ir.Size)
		fmt.Fprintf(&b, "    direct blocks:%s\n", bnums(ir.Direct))
		if !ir.Indirect.IsNull() {
			fmt.Fprintf(&b, "    indirect block: %d\n", ir.Indirect)
			fmt.Fprintf(&b, "    indirect data blocks:%s\n", bnums(ir.IndirectData))
		}
	}
	return b.WriteTo(w)
}
