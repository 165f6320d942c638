package disk

import (
	"fmt"

	gdisk "github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"
)

var _ Disk = (*fileDisk)(nil)

type fileDisk struct {
	fd        int
	numBlocks uint64
}

// NewFileDisk opens (creating if necessary) a disk image at path. A regular
// file is resized to numBlocks blocks; numBlocks == 0 keeps the existing
// size.
func NewFileDisk(path string, numBlocks uint64) (Disk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if numBlocks == 0 {
		numBlocks = uint64(stat.Size) / BlockSize
	}
	if (stat.Mode&unix.S_IFREG) != 0 && uint64(stat.Size) != numBlocks*BlockSize {
		err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("truncate %s: %w", path, err)
		}
	}
	return &fileDisk{fd, numBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		return ErrBadBlock
	}
	if a >= d.numBlocks {
		return fmt.Errorf("read at %d: %w", a, ErrOutOfRange)
	}
	_, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("read at %d: %w", a, err)
	}
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make([]byte, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return fmt.Errorf("write %d bytes: %w", len(v), ErrBadBlock)
	}
	if a >= d.numBlocks {
		return fmt.Errorf("write at %d: %w", a, ErrOutOfRange)
	}
	_, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("write at %d: %w", a, err)
	}
	return nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	err := unix.Fsync(d.fd)
	if err != nil {
		return fmt.Errorf("file sync failed: %w", err)
	}
	return nil
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}

/////////////////////////

var _ Disk = (*memDisk)(nil)

// memDisk checks bounds and then defers to goose's in-memory disk, which
// panics on bad addresses.
type memDisk struct {
	d         gdisk.Disk
	numBlocks uint64
}

func NewMemDisk(numBlocks uint64) Disk {
	return &memDisk{d: gdisk.NewMemDisk(numBlocks), numBlocks: numBlocks}
}

func (d *memDisk) check(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		return fmt.Errorf("%d bytes: %w", len(buf), ErrBadBlock)
	}
	if a >= d.numBlocks {
		return fmt.Errorf("block %d: %w", a, ErrOutOfRange)
	}
	return nil
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if err := d.check(a, buf); err != nil {
		return err
	}
	copy(buf, d.d.Read(a))
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	if err := d.check(a, v); err != nil {
		return err
	}
	d.d.Write(a, v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	// this never changes so we assume it's safe to run lock-free
	return d.numBlocks, nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }
