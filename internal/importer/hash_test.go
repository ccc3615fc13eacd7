// internal/importer/hash_test.go
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestHashPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.iso")
	writeFile(t, path, "disc image")

	d, err := HashPath(path)
	require.NoError(t, err)

	want := sha256.Sum256([]byte("disc image"))
	assert.Equal(t, hex.EncodeToString(want[:]), d.Hash)
	assert.Equal(t, int64(len("disc image")), d.Size)
}

func TestHashPath_Tree(t *testing.T) {
	a := t.TempDir()
	writeFile(t, filepath.Join(a, "setup.exe"), "installer")
	writeFile(t, filepath.Join(a, "data", "1.bin"), "one")

	b := t.TempDir()
	writeFile(t, filepath.Join(b, "data", "1.bin"), "one")
	writeFile(t, filepath.Join(b, "setup.exe"), "installer")

	da, err := HashPath(a)
	require.NoError(t, err)
	db, err := HashPath(b)
	require.NoError(t, err)
	assert.Equal(t, da, db, "same content in any creation order hashes the same")
	assert.Equal(t, int64(len("installer")+len("one")), da.Size)

	// Renaming a file changes the tree digest
	require.NoError(t, os.Rename(filepath.Join(b, "setup.exe"), filepath.Join(b, "install.exe")))
	db, err = HashPath(b)
	require.NoError(t, err)
	assert.NotEqual(t, da.Hash, db.Hash)

	// So does changing content
	writeFile(t, filepath.Join(a, "data", "1.bin"), "uno")
	da2, err := HashPath(a)
	require.NoError(t, err)
	assert.NotEqual(t, da.Hash, da2.Hash)
}

func TestHashPath_Missing(t *testing.T) {
	_, err := HashPath(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPathSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "12345")
	writeFile(t, filepath.Join(dir, "sub", "b"), "678")

	size, err := PathSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	size, err = PathSize(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestNewestModTime(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old"), "x")
	writeFile(t, filepath.Join(dir, "sub", "new"), "y")

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range []string{dir, filepath.Join(dir, "sub"), filepath.Join(dir, "old")} {
		require.NoError(t, os.Chtimes(p, old, old))
	}
	require.NoError(t, os.Chtimes(filepath.Join(dir, "sub", "new"), newer, newer))

	got, err := NewestModTime(dir)
	require.NoError(t, err)
	assert.True(t, got.Equal(newer), "got %v", got)
}
