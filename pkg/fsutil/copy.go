package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// CopyFile copies the regular file `src` to `dst`, preserving the file mode.  The destination
// mtime is set to the source mtime, clamped to `clampTime` for reproducibility.  If `dst` already
// exists it is replaced.
func CopyFile(src, dst string, clampTime time.Time) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.Mode().IsRegular() {
		return &fs.PathError{
			Op:   "copy",
			Path: src,
			Err:  fs.ErrInvalid,
		}
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(srcFile.Close())
	}()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	modTime := srcInfo.ModTime()
	if modTime.After(clampTime) {
		modTime = clampTime
	}
	return os.Chtimes(dst, modTime, modTime)
}

// FileExists reports whether `path` names an existing regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// DirExists reports whether `path` names an existing directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// WriteFileAtomic writes `content` to `path` by way of a temporary file and a rename, so that a
// crash part-way through never leaves a truncated file behind.
func WriteFileAtomic(path string, content []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
