package provision

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datawire/dlib/dlog"

	"github.com/modelworks/geoenv/pkg/fsutil"
	"github.com/modelworks/geoenv/pkg/reproducible"
)

// installSpatialite unpacks the extension archive into destDir, swapping out the shared
// libraries named in cfg.Replacements as it goes.  Archive timestamps are clamped for
// reproducibility.
func installSpatialite(ctx context.Context, cfg *SpatialiteConfig, destDir string) error {
	zipReader, err := zip.OpenReader(cfg.Archive)
	if err != nil {
		return err
	}
	defer func() {
		_ = zipReader.Close()
	}()

	clampTime := reproducible.Now()
	replaced := make(map[string]bool, len(cfg.Replacements))

	for _, file := range zipReader.File {
		name := filepath.FromSlash(file.Name)
		if filepath.IsAbs(name) || hasDotDot(name) {
			return fmt.Errorf("%s: refusing to extract unsafe member name: %q",
				cfg.Archive, file.Name)
		}
		dst := filepath.Join(destDir, name)

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o777); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
			return err
		}

		if src, ok := cfg.Replacements[filepath.Base(name)]; ok {
			dlog.Infof(ctx, "replacing %q with %q", file.Name, src)
			if err := fsutil.CopyFile(src, dst, clampTime); err != nil {
				return err
			}
			replaced[filepath.Base(name)] = true
			continue
		}

		if err := extractFile(file, dst, clampTime); err != nil {
			return fmt.Errorf("%s: %q: %w", cfg.Archive, file.Name, err)
		}
	}

	for name := range cfg.Replacements {
		if !replaced[name] {
			return fmt.Errorf("%s: replacement target %q does not appear in the archive",
				cfg.Archive, name)
		}
	}
	return nil
}

func hasDotDot(name string) bool {
	for _, part := range strings.Split(name, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	return false
}

func extractFile(file *zip.File, dst string, clampTime time.Time) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(reader.Close())
	}()

	writer, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm()|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	modTime := file.Modified
	if modTime.After(clampTime) {
		modTime = clampTime
	}
	return os.Chtimes(dst, modTime, modTime)
}
