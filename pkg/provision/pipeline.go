package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"

	"github.com/modelworks/geoenv/pkg/fsutil"
	"github.com/modelworks/geoenv/pkg/kernelspec"
	"github.com/modelworks/geoenv/pkg/python"
	"github.com/modelworks/geoenv/pkg/python/pyinspect"
	"github.com/modelworks/geoenv/pkg/python/pypa/bdist"
	"github.com/modelworks/geoenv/pkg/reproducible"
)

// State tracks how far a Pipeline has gotten.  It only ever moves forward; a failed step leaves
// the Pipeline in the last state it reached.
type State int

const (
	StateNotStarted State = iota
	StateVenvCreated
	StateActivated
	StateExtensionRelocated
	StateWheelsInstalled
	StateRequirementsInstalled
	StateKernelRegistered
	StateSmokeTested
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateVenvCreated:
		return "venv-created"
	case StateActivated:
		return "activated"
	case StateExtensionRelocated:
		return "extension-relocated"
	case StateWheelsInstalled:
		return "wheels-installed"
	case StateRequirementsInstalled:
		return "requirements-installed"
	case StateKernelRegistered:
		return "kernel-registered"
	case StateSmokeTested:
		return "smoke-tested"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A Pipeline is one provisioning run.  The steps run in a fixed order and any error aborts the
// run; there are no retries and no partial recovery.
type Pipeline struct {
	cfg   *Config
	state State

	// set by createVenv
	venv *python.VirtualEnv

	// set by activate
	env *Context
}

func NewPipeline(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:   cfg,
		state: StateNotStarted,
	}, nil
}

func (p *Pipeline) State() State {
	return p.state
}

// Env returns the execution context, once the pipeline has reached StateActivated.
func (p *Pipeline) Env() *Context {
	return p.env
}

// Run executes every step in order.  A step error is returned wrapped with the step's name and
// leaves the Pipeline in the last state it completed.
func (p *Pipeline) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
		next State
	}{
		{"create-venv", p.createVenv, StateVenvCreated},
		{"copy-path-files", p.copyPathFiles, StateVenvCreated},
		{"activate", p.activate, StateActivated},
		{"upgrade-pip", p.upgradePip, StateActivated},
		{"relocate-spatialite", p.relocateSpatialite, StateExtensionRelocated},
		{"install-wheels", p.installWheels, StateWheelsInstalled},
		{"install-requirements", p.installRequirements, StateRequirementsInstalled},
		{"register-kernel", p.registerKernel, StateKernelRegistered},
		{"smoke-test", p.smokeTest, StateSmokeTested},
	}
	for _, step := range steps {
		dlog.Infof(ctx, "step %s", step.name)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("step %s: %w", step.name, err)
		}
		p.state = step.next
	}
	p.state = StateDone
	return nil
}

func (p *Pipeline) createVenv(ctx context.Context) error {
	exists, err := fsutil.FileExists(p.cfg.BaseInterpreter)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("base interpreter does not exist: %q", p.cfg.BaseInterpreter)
	}
	base, err := pyinspect.Inspect(ctx, p.cfg.BaseInterpreter)
	if err != nil {
		return fmt.Errorf("base interpreter %q: %w", p.cfg.BaseInterpreter, err)
	}
	venv, err := python.NewVirtualEnv(p.cfg.EnvDir,
		fmt.Sprintf("%d.%d", base.VersionInfo.Major, base.VersionInfo.Minor))
	if err != nil {
		return err
	}
	cmd := dexec.CommandContext(ctx, p.cfg.BaseInterpreter, "-m", "venv", venv.Root)
	if err := cmd.Run(); err != nil {
		return err
	}
	p.venv = venv
	return nil
}

func (p *Pipeline) copyPathFiles(ctx context.Context) error {
	sitePackages := p.venv.SitePackages()
	for _, src := range p.cfg.PathFiles {
		exists, err := fsutil.FileExists(src)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("path file does not exist: %q", src)
		}
		dst := filepath.Join(sitePackages, filepath.Base(src))
		dlog.Infof(ctx, "copying %q to %q", src, dst)
		if err := fsutil.CopyFile(src, dst, reproducible.Now()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) activate(ctx context.Context) error {
	env, err := activate(ctx, p.venv, p.cfg.Proxy)
	if err != nil {
		return err
	}
	p.env = env
	return nil
}

func (p *Pipeline) upgradePip(ctx context.Context) error {
	return p.env.Pip(ctx, "install", "--upgrade", "pip").Run()
}

func (p *Pipeline) relocateSpatialite(ctx context.Context) error {
	if p.cfg.Spatialite == nil {
		return nil
	}
	if !p.env.Interp.Windows {
		// The extension loads via rpath-style resolution here; nothing to place.
		dlog.Infof(ctx, "skipping: not needed for this interpreter's library resolution")
		return nil
	}
	dest := p.cfg.Spatialite.Dest
	if dest == "" {
		dest = p.env.Interp.Scheme.Scripts
	}
	return installSpatialite(ctx, p.cfg.Spatialite, dest)
}

func (p *Pipeline) installWheels(ctx context.Context) error {
	if len(p.cfg.Wheels) > 0 {
		exists, err := fsutil.DirExists(p.cfg.WheelDir)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("wheel directory does not exist: %q", p.cfg.WheelDir)
		}
	}
	for _, name := range p.cfg.Wheels {
		wheelPath := filepath.Join(p.cfg.WheelDir, name)
		exists, err := fsutil.FileExists(wheelPath)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("pinned wheel does not exist: %q", wheelPath)
		}
		data, err := bdist.ParseFilename(name)
		if err != nil {
			return err
		}
		if !p.env.Interp.Supports(data.CompatibilityTag) {
			return fmt.Errorf("wheel %q is not compatible with interpreter %q: tag %q",
				name, p.env.Interp.Exe, data.CompatibilityTag)
		}
		if err := p.env.Pip(ctx, "install", wheelPath).Run(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) installRequirements(ctx context.Context) error {
	if p.cfg.Requirements == "" {
		return nil
	}
	content, err := os.ReadFile(p.cfg.Requirements)
	if err != nil {
		return err
	}
	reqs, err := ParseRequirements(content)
	if err != nil {
		return fmt.Errorf("%s: %w", p.cfg.Requirements, err)
	}
	if len(reqs) == 0 {
		dlog.Infof(ctx, "%s: no effective requirements, skipping pip", p.cfg.Requirements)
		return nil
	}
	return p.env.Pip(ctx, "install", "-r", p.cfg.Requirements).Run()
}

func (p *Pipeline) registerKernel(ctx context.Context) error {
	_, err := kernelspec.Register(ctx, p.env.Interp.Exe, p.venv.DataDir(),
		p.cfg.KernelName, p.cfg.KernelDisplayName)
	return err
}

func (p *Pipeline) smokeTest(ctx context.Context) error {
	for _, module := range p.cfg.SmokeTestImports {
		if err := pyinspect.CheckImport(ctx, p.env.Interp.Exe, module); err != nil {
			return err
		}
	}
	return nil
}
