// buf manages sub-block disk objects, packed into disk blocks
package buf

import (
	"fmt"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/util"
)

// A Buf is a disk object (an inode record) inside a larger block.
type Buf struct {
	Addr addr.Addr
	Sz   uint64 // number of bytes
	Data []byte
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// Load the bytes of a disk block into a new buf, as specified by addr. The
// buf aliases blk.
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	return MkBuf(addr, sz, blk[addr.Off:addr.Off+sz])
}

// Install the bytes from buf into blk.
func (buf *Buf) Install(blk disk.Block) {
	util.DPrintf(20, "%v: install\n", buf.Addr)
	if buf.Addr.Off+buf.Sz > uint64(len(blk)) {
		panic(fmt.Errorf("install %v: object of %d bytes overflows block", buf.Addr, buf.Sz))
	}
	copy(blk[buf.Addr.Off:buf.Addr.Off+buf.Sz], buf.Data)
}

// WriteDirect installs buf into its block on d, reading the block first
// unless buf covers all of it.
func (buf *Buf) WriteDirect(d disk.Disk) error {
	blkno := uint64(buf.Addr.Blkno)
	if buf.Sz == disk.BlockSize {
		return d.Write(blkno, buf.Data)
	}
	blk, err := d.Read(blkno)
	if err != nil {
		return err
	}
	buf.Install(blk)
	return d.Write(blkno, blk)
}
