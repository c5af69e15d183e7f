package python

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// A VirtualEnv describes the on-disk layout of a venv-module virtual environment, which differs
// between the Windows layout (Scripts\, Lib\site-packages) and the posix layout (bin/,
// lib/pythonX.Y/site-packages).
type VirtualEnv struct {
	// Root is the absolute path of the environment directory.
	Root string

	// Windows selects the Windows layout.
	Windows bool

	// Version is the "X.Y" of the interpreter the environment was created from; the posix
	// layout needs it to locate site-packages.
	Version string
}

// NewVirtualEnv describes an environment rooted at `root` for the current host platform.
func NewVirtualEnv(root, version string) (*VirtualEnv, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return nil, fmt.Errorf("python.NewVirtualEnv: empty interpreter version")
	}
	return &VirtualEnv{
		Root:    abs,
		Windows: runtime.GOOS == "windows",
		Version: version,
	}, nil
}

// ScriptsDir returns the directory holding the environment's executables.
func (venv *VirtualEnv) ScriptsDir() string {
	if venv.Windows {
		return filepath.Join(venv.Root, "Scripts")
	}
	return filepath.Join(venv.Root, "bin")
}

// Python returns the path of the environment's own interpreter executable.
func (venv *VirtualEnv) Python() string {
	if venv.Windows {
		return filepath.Join(venv.ScriptsDir(), "python.exe")
	}
	return filepath.Join(venv.ScriptsDir(), "python")
}

// SitePackages returns the environment's package-search-path directory, which is where `.pth`
// files and installed distributions go.
func (venv *VirtualEnv) SitePackages() string {
	if venv.Windows {
		return filepath.Join(venv.Root, "Lib", "site-packages")
	}
	return filepath.Join(venv.Root, "lib", "python"+venv.Version, "site-packages")
}

// DataDir returns the environment's data directory, the prefix that
// `python -m ipykernel install --prefix` installs kernelspecs under.
func (venv *VirtualEnv) DataDir() string {
	return venv.Root
}
