// Package kernelspec deals with Jupyter kernel specifications.
//
// https://jupyter-client.readthedocs.io/en/stable/kernels.html#kernel-specs
package kernelspec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/datawire/dlib/dexec"
)

// A Spec is the parsed content of a kernel.json file.
type Spec struct {
	Argv          []string               `json:"argv"`
	DisplayName   string                 `json:"display_name"`
	Language      string                 `json:"language"`
	InterruptMode string                 `json:"interrupt_mode,omitempty"`
	Env           map[string]string      `json:"env,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Dir returns the directory that holds the kernel.json for the named kernel
// under the given environment prefix.
func Dir(prefix, name string) string {
	return filepath.Join(prefix, "share", "jupyter", "kernels", name)
}

// Read parses the kernel.json inside the given kernelspec directory.
func Read(dir string) (*Spec, error) {
	content, err := os.ReadFile(filepath.Join(dir, "kernel.json"))
	if err != nil {
		return nil, err
	}
	var spec Spec
	if err := json.Unmarshal(content, &spec); err != nil {
		return nil, fmt.Errorf("kernelspec.Read: %q: %w", dir, err)
	}
	return &spec, nil
}

// Lookup returns the Spec for the named kernel under the given environment
// prefix, or an error satisfying os.IsNotExist if it is not registered.
func Lookup(prefix, name string) (*Spec, error) {
	return Read(Dir(prefix, name))
}

// List returns the names of all kernels registered under the given
// environment prefix, sorted.  A prefix with no kernels tree at all is not an
// error; it simply has no kernels.
func List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(prefix, "share", "jupyter", "kernels"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(Dir(prefix, entry.Name()), "kernel.json")); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Register installs an IPython kernel for the given interpreter under the
// given environment prefix, then verifies that the kernelspec actually landed
// on disk.
func Register(ctx context.Context, python, prefix, name, displayName string) (*Spec, error) {
	cmd := dexec.CommandContext(ctx, python,
		"-m", "ipykernel", "install",
		"--prefix", prefix,
		"--name", name,
		"--display-name", displayName)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kernelspec.Register: %w", err)
	}
	spec, err := Lookup(prefix, name)
	if err != nil {
		return nil, fmt.Errorf("kernelspec.Register: kernel %q did not get installed: %w", name, err)
	}
	return spec, nil
}
