package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(b byte) Block {
	blk := make(Block, BlockSize)
	for i := range blk {
		blk[i] = b
	}
	return blk
}

func testReadWrite(t *testing.T, d Disk) {
	assert := assert.New(t)
	sz, err := d.Size()
	assert.NoError(err)
	assert.Equal(uint64(10), sz)

	assert.NoError(d.Write(3, block(0xab)))
	b, err := d.Read(3)
	assert.NoError(err)
	assert.Equal(block(0xab), b)

	b, err = d.Read(4)
	assert.NoError(err)
	assert.Equal(block(0), b, "unwritten blocks should be zero")

	_, err = d.Read(10)
	assert.ErrorIs(err, ErrOutOfRange)
	assert.ErrorIs(d.Write(10, block(1)), ErrOutOfRange)
	assert.ErrorIs(d.Write(0, make(Block, 10)), ErrBadBlock)
	assert.NoError(d.Barrier())
}

func TestMemDisk(t *testing.T) {
	d := NewMemDisk(10)
	testReadWrite(t, d)
	assert.NoError(t, d.Close())
}

func TestFileDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	d, err := NewFileDisk(path, 10)
	require.NoError(t, err)
	testReadWrite(t, d)
	require.NoError(t, d.Close())

	// reopening with size 0 keeps the existing image
	d, err = NewFileDisk(path, 0)
	require.NoError(t, err)
	defer d.Close()
	sz, err := d.Size()
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), sz)
	b, err := d.Read(3)
	assert.NoError(t, err)
	assert.Equal(t, block(0xab), b, "data should persist across opens")
}
