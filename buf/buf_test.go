package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-simplefs/addr"
	"github.com/mit-pdos/go-simplefs/disk"
)

func TestLoadAliases(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	blk[32] = 0x7
	b := MkBufLoad(addr.MkAddr(1, 32), 32, blk)
	assert.Equal(t, byte(0x7), b.Data[0])

	b.Data[1] = 0x9
	assert.Equal(t, byte(0x9), blk[33], "buf should alias its block")
}

func TestInstall(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	blk[63] = 0xFF
	data := []byte{1, 2, 3, 4}
	b := MkBuf(addr.MkAddr(1, 60), 4, data)
	b.Install(blk)
	assert.Equal(t, []byte{1, 2, 3, 4}, blk[60:64])
	assert.Equal(t, byte(0), blk[64])
}

func TestWriteDirect(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(4)
	orig := make(disk.Block, disk.BlockSize)
	orig[0] = 0xAA
	assert.NoError(d.Write(2, orig))

	b := MkBuf(addr.MkAddr(2, 32), 2, []byte{0xB, 0xC})
	assert.NoError(b.WriteDirect(d))

	blk, err := d.Read(2)
	assert.NoError(err)
	assert.Equal(byte(0xAA), blk[0], "rest of block should be preserved")
	assert.Equal([]byte{0xB, 0xC}, blk[32:34])

	full := make([]byte, disk.BlockSize)
	full[4095] = 0x1
	assert.NoError(MkBuf(addr.MkAddr(3, 0), disk.BlockSize, full).WriteDirect(d))
	blk, err = d.Read(3)
	assert.NoError(err)
	assert.Equal(full, blk)

	assert.ErrorIs(MkBuf(addr.MkAddr(9, 0), 2, []byte{1, 2}).WriteDirect(d), disk.ErrOutOfRange)
}
