package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/fsutil"
)

func TestCopyFile(t *testing.T) {
	t.Parallel()
	clamp := time.Date(2020, 4, 20, 0, 0, 0, 0, time.UTC)

	t.Run("old-mtime-preserved", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src := filepath.Join(dir, "src.pth")
		dst := filepath.Join(dir, "dst.pth")
		require.NoError(t, os.WriteFile(src, []byte("/opt/emme/python\n"), 0o666))
		require.NoError(t, os.Chmod(src, 0o640))
		old := clamp.Add(-24 * time.Hour)
		require.NoError(t, os.Chtimes(src, old, old))

		require.NoError(t, fsutil.CopyFile(src, dst, clamp))

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "/opt/emme/python\n", string(content))
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
		assert.True(t, info.ModTime().Equal(old))
	})

	t.Run("future-mtime-clamped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src := filepath.Join(dir, "src.pth")
		dst := filepath.Join(dir, "dst.pth")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o666))
		future := clamp.Add(24 * time.Hour)
		require.NoError(t, os.Chtimes(src, future, future))

		require.NoError(t, fsutil.CopyFile(src, dst, clamp))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(clamp))
	})

	t.Run("not-a-regular-file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		err := fsutil.CopyFile(dir, filepath.Join(dir, "dst"), clamp)
		assert.Error(t, err)
	})
}

func TestExists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o666))

	for _, tc := range []struct {
		Name     string
		Fn       func(string) (bool, error)
		Path     string
		Expected bool
	}{
		{"file-is-file", fsutil.FileExists, file, true},
		{"dir-is-not-file", fsutil.FileExists, dir, false},
		{"missing-is-not-file", fsutil.FileExists, filepath.Join(dir, "missing"), false},
		{"dir-is-dir", fsutil.DirExists, dir, true},
		{"file-is-not-dir", fsutil.DirExists, file, false},
		{"missing-is-not-dir", fsutil.DirExists, filepath.Join(dir, "missing"), false},
	} {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			actual, err := tc.Fn(tc.Path)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, actual)
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.whl")

	require.NoError(t, fsutil.WriteFileAtomic(path, []byte("first"), 0o640))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// Replacing an existing file works, and no temporary files are left behind.
	require.NoError(t, fsutil.WriteFileAtomic(path, []byte("second"), 0o666))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.whl", entries[0].Name())
}
