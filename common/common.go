package common

import (
	"github.com/mit-pdos/go-simplefs/disk"
)

const (
	MAGIC uint32 = 0xF0F03410

	INODESZ  uint64 = 32 // on-disk size
	INODEBLK uint64 = 128

	NDIRECT      uint64 = 5
	NINDIRECT    uint64 = disk.BlockSize / 4
	MAXFILEBLKS         = NDIRECT + NINDIRECT
	MAXFILESZ           = MAXFILEBLKS * disk.BlockSize
	INODEBLKFRAC uint64 = 10 // one block in ten holds inodes
)

type Inum uint64

// Bnum is an on-disk block reference. NULLBNUM marks an unallocated
// pointer; block 0 holds the superblock and is never file data.
type Bnum uint32

const (
	NULLINUM Inum = 0
	NULLBNUM Bnum = 0
)

func (bn Bnum) IsNull() bool {
	return bn == NULLBNUM
}
