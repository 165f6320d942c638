package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, img string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--disk", img}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "fs.img")

	out, err := run(t, img, "--blocks", "100", "format")
	require.NoError(t, err)
	assert.Equal(t, "disk formatted.\n", out)

	out, err = run(t, img, "create")
	require.NoError(t, err)
	assert.Equal(t, "created inode 1\n", out)

	src := filepath.Join(dir, "in.txt")
	contents := bytes.Repeat([]byte("simplefs "), 5000)
	require.NoError(t, os.WriteFile(src, contents, 0644))
	out, err = run(t, img, "copyin", src, "1")
	require.NoError(t, err)
	assert.Equal(t, "45000 bytes copied\n", out)

	out, err = run(t, img, "getsize", "1")
	require.NoError(t, err)
	assert.Equal(t, "inode 1 has size 45000\n", out)

	out, err = run(t, img, "cat", "1")
	require.NoError(t, err)
	assert.Equal(t, string(contents), out)

	dst := filepath.Join(dir, "out.txt")
	_, err = run(t, img, "copyout", "1", dst)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, contents, got)

	out, err = run(t, img, "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "magic number is valid")
	assert.Contains(t, out, "inode 1:\n    size: 45000 bytes\n")

	out, err = run(t, img, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "inode 1 deleted.\n", out)

	_, err = run(t, img, "getsize", "1")
	assert.Error(t, err)
	_, err = run(t, img, "delete", "x")
	assert.Error(t, err)
}

func TestMountUnformatted(t *testing.T) {
	img := filepath.Join(t.TempDir(), "blank.img")
	require.NoError(t, os.WriteFile(img, make([]byte, 4096*10), 0644))
	_, err := run(t, img, "create")
	assert.Error(t, err)

	out, err := run(t, img, "debug")
	assert.NoError(t, err)
	assert.Contains(t, out, "Magic number is invalid")
}
