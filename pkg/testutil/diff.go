package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// DumpDirFull returns a dump of every file under `dir`, headers and contents both, suitable for
// line-based diffing.
func DumpDirFull(dir string) (string, error) {
	ret := new(strings.Builder)

	err := filepath.WalkDir(dir, func(path string, dirent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := dirent.Info()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(ret, "name = %q\nmode = %q\n",
			filepath.ToSlash(rel), info.Mode().String()); err != nil {
			return err
		}
		if dirent.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(ret, "content =%s", spewConfig.Sdump(content)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return ret.String(), nil
}

// DumpDirListing returns an `ls -l`-ish listing of every file under `dir`.
func DumpDirListing(dir string) (string, error) {
	ret := new(strings.Builder)

	table := tabwriter.NewWriter(
		ret, // output
		0,   // minwidth
		1,   // tabwidth
		1,   // padding
		' ', // padchar
		0)   // flags
	err := filepath.WalkDir(dir, func(path string, dirent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := dirent.Info()
		if err != nil {
			return err
		}
		size := int64(0)
		if !dirent.IsDir() {
			size = info.Size()
		}
		if _, err := fmt.Fprintln(table, strings.Join([]string{
			"",
			info.Mode().String(),
			fmt.Sprintf("% 10d", size),
			filepath.ToSlash(rel),
		}, "\t")); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := table.Flush(); err != nil {
		return "", err
	}

	return ret.String(), nil
}

// AssertEqualDirs compares two directory trees, first by listing and then file-by-file, and
// reports any difference as a unified diff.
func AssertEqualDirs(t *testing.T, exp, act string) bool {
	t.Helper()

	// First just compare the listings, in order to "fail fast" and give more readable output.
	expStr, err := DumpDirListing(exp)
	if err != nil {
		t.Errorf("error dumping expected dir listing: %v", err)
		return false
	}
	actStr, err := DumpDirListing(act)
	if err != nil {
		t.Errorf("error dumping actual dir listing: %v", err)
		return false
	}
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Listing diff:\n%s", diff)
		return false
	}

	// OK, that passed, now do a more comprehensive diff.
	expStr, err = DumpDirFull(exp)
	if err != nil {
		t.Errorf("error dumping expected dir: %v", err)
		return false
	}
	actStr, err = DumpDirFull(act)
	if err != nil {
		t.Errorf("error dumping actual dir: %v", err)
		return false
	}
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Full diff:\n%s", diff)
		return false
	}

	return true
}

// AssertEqualText is like assert.Equal for big multi-line strings, reporting failures as a
// unified diff instead of a quoted pair.
func AssertEqualText(t *testing.T, exp, act string) bool {
	t.Helper()

	if exp == act {
		return true
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(exp),
		B:        difflib.SplitLines(act),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  3,
	})
	t.Errorf("Text diff:\n%s", diff)
	return false
}
