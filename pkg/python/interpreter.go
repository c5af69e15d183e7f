// Package python models the facts about a Python interpreter install that environment
// provisioning needs: where it lives, what version it is, where its install scheme puts things,
// and which binary-distribution tags it can load.
package python

import (
	"fmt"
	"path/filepath"

	"github.com/modelworks/geoenv/pkg/python/pep425"
	"github.com/modelworks/geoenv/pkg/python/pep440"
)

// An Interpreter describes one concrete Python interpreter.
type Interpreter struct {
	// Exe is the absolute path to the interpreter executable.
	Exe string `json:"executable"`

	// Windows indicates the Windows dynamic-library resolution model (DLLs are found via
	// PATH and the executable's directory, not rpaths).
	Windows bool `json:"windows"`

	VersionInfo *VersionInfo `json:"version_info"`
	Scheme      Scheme       `json:"scheme"`

	// Tags are the PEP 425 tags the interpreter supports, most-preferred first.
	Tags pep425.Installer `json:"tags"`
}

type VersionInfo struct {
	Major        int    `json:"major"`
	Minor        int    `json:"minor"`
	Micro        int    `json:"micro"`
	ReleaseLevel string `json:"releaselevel"` // 'alpha', 'beta', 'candidate', or 'final'
	Serial       int    `json:"serial"`
}

func (vi VersionInfo) PEP440() (*pep440.Version, error) {
	var ret pep440.Version
	ret.Release = []int{
		vi.Major,
		vi.Minor,
		vi.Micro,
	}
	switch vi.ReleaseLevel {
	case "alpha":
		ret.Pre = &pep440.PreRelease{L: "a", N: 0}
	case "beta":
		ret.Pre = &pep440.PreRelease{L: "b", N: 0}
	case "candidate":
		ret.Pre = &pep440.PreRelease{L: "rc", N: 0}
	case "final":
		ret.Pre = nil
	default:
		return nil, fmt.Errorf("python.VersionInfo.PEP440: invalid version_info.releaselevel: %q",
			vi.ReleaseLevel)
	}
	return &ret, nil
}

// Scheme is the set of installation directories described in
// distutils.command.install.SCHEME_KEYS and distutils.command.install.INSTALL_SCHEMES.
type Scheme struct {
	PureLib string `json:"purelib"` // ".../lib/python3.9/site-packages"
	PlatLib string `json:"platlib"` // ".../lib64/python3.9/site-packages"
	Headers string `json:"headers"` // ".../include/python3.9/$name/"
	Scripts string `json:"scripts"` // ".../bin" or `...\Scripts`
	Data    string `json:"data"`    // ".../"
}

// Validate checks that the interpreter facts are complete enough to drive an install.
func (py *Interpreter) Validate() error {
	if py.Exe == "" {
		return fmt.Errorf("interpreter does not specify an executable path")
	}
	if !filepath.IsAbs(py.Exe) {
		return fmt.Errorf("interpreter executable is not an absolute path: %q", py.Exe)
	}
	if py.VersionInfo == nil {
		return fmt.Errorf("interpreter %q does not specify version_info", py.Exe)
	}
	for _, pair := range []struct {
		name string
		val  string
	}{
		{"purelib", py.Scheme.PureLib},
		{"platlib", py.Scheme.PlatLib},
		{"headers", py.Scheme.Headers},
		{"scripts", py.Scheme.Scripts},
		{"data", py.Scheme.Data},
	} {
		if !filepath.IsAbs(pair.val) {
			return fmt.Errorf("interpreter %q install scheme %q is not an absolute path: %q",
				py.Exe, pair.name, pair.val)
		}
	}
	return nil
}

// Supports reports whether the interpreter can load a binary distribution with the given
// compatibility tag.
func (py *Interpreter) Supports(tag pep425.Tag) bool {
	return py.Tags.Supports(tag)
}
