// Package provision creates and populates a Python virtual environment for the geospatial stack:
// venv creation, path-file placement, pinned wheel installation in dependency order, requirements
// installation, Jupyter kernel registration, and an import smoke test, as one fail-fast pipeline.
package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Config describes everything a provisioning run needs.  It is normally loaded from a YAML file;
// see LoadConfig.
type Config struct {
	// BaseInterpreter is the Python executable to create the environment from.
	BaseInterpreter string

	// EnvDir is the directory to create the environment in.
	EnvDir string

	// WheelDir is the directory holding the pinned wheel files named by Wheels.
	WheelDir string

	// Wheels are pinned wheel filenames, installed one at a time in exactly this order; later
	// wheels link against earlier ones at build or load time.
	Wheels []string

	// Requirements is the path of a pip requirements manifest to install after the pinned
	// wheels.  Empty means no manifest.
	Requirements string

	// PathFiles are `.pth` files to copy into the environment's site-packages.
	PathFiles []string

	// Spatialite configures relocation of the compiled SpatiaLite extension; nil disables it.
	Spatialite *SpatialiteConfig

	KernelName        string
	KernelDisplayName string

	// SmokeTestImports are module names that must be importable once provisioning is done.
	SmokeTestImports []string

	// Proxy credentials are exported to package-manager subprocesses only; they never land in
	// the environment itself.
	Proxy ProxyConfig
}

type ProxyConfig struct {
	HTTP  string
	HTTPS string
}

// SpatialiteConfig names the archive holding the compiled extension tree, and which of its shared
// libraries to swap out for newer copies while unpacking.
type SpatialiteConfig struct {
	// Archive is a zip file containing the mod_spatialite tree.
	Archive string

	// Replacements maps archive member base names to files whose content replaces them.
	Replacements map[string]string

	// Dest overrides where the tree is unpacked; empty means the environment's scripts
	// directory, which is on the interpreter's library search path.
	Dest string
}

// LoadConfig reads and validates a YAML Config file.  Unknown fields are an error.
func LoadConfig(path string) (*Config, error) {
	yamlBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(yamlBytes, &cfg, yaml.DisallowUnknownFields); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks required fields and fills defaults.
func (cfg *Config) Validate() error {
	if cfg.BaseInterpreter == "" {
		return fmt.Errorf("provision.Config: BaseInterpreter must be set")
	}
	if cfg.EnvDir == "" {
		return fmt.Errorf("provision.Config: EnvDir must be set")
	}
	if len(cfg.Wheels) > 0 && cfg.WheelDir == "" {
		return fmt.Errorf("provision.Config: WheelDir must be set when Wheels are listed")
	}
	if cfg.Spatialite != nil && cfg.Spatialite.Archive == "" {
		return fmt.Errorf("provision.Config: Spatialite.Archive must be set")
	}
	if cfg.KernelName == "" {
		cfg.KernelName = filepath.Base(cfg.EnvDir)
	}
	if cfg.KernelDisplayName == "" {
		cfg.KernelDisplayName = cfg.KernelName
	}
	return nil
}
