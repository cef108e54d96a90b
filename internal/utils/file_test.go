package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "png", GetFileExtension("snapshot_1.PNG"))
	assert.Equal(t, "webp", GetFileExtension("/a/b/c.webp"))
	assert.Equal(t, "", GetFileExtension("noext"))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("frame001.jpg"))
	assert.True(t, IsImageFile("frame001.BMP"))
	assert.False(t, IsImageFile("notes.txt"))
}

func TestSnapshotFilename(t *testing.T) {
	ts := time.Unix(1700000000, 500)
	assert.Equal(t, "snapshot_1700000000.png", SnapshotFilename("snapshot_", ts, "png"))
	assert.Equal(t, "snapshot_1700000000.webp", SnapshotFilename("snapshot_", ts, "WEBP"))
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}, files)

	_, err = ListImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "painting.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.png")))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots", "today")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.png", SanitizeFilename("a/b:c.png"))
	assert.Equal(t, "snap.png", SanitizeFilename("  snap.png. "))
}
