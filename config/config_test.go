package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Disk:      "simplefs.img",
		Blocks:    100,
		Debug:     0,
		LogFormat: "human",
	}, cfg)
}

func TestEnv(t *testing.T) {
	t.Setenv("SIMPLEFS_DISK", "/tmp/other.img")
	t.Setenv("SIMPLEFS_BLOCKS", "250")
	t.Setenv("SIMPLEFS_LOG_FORMAT", "json")
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.img", cfg.Disk)
	assert.Equal(t, uint64(250), cfg.Blocks)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simplefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("disk: image.bin\nblocks: 40\ndebug: 5\n"), 0644))
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "image.bin", cfg.Disk)
	assert.Equal(t, uint64(40), cfg.Blocks)
	assert.Equal(t, uint64(5), cfg.Debug)
}

func TestBad(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	v := New()
	v.Set("log_format", "xml")
	_, err = Load(v, "")
	assert.Error(t, err)
}
