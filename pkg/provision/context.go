package provision

import (
	"context"
	"os"

	"github.com/datawire/dlib/dexec"

	"github.com/modelworks/geoenv/pkg/python"
	"github.com/modelworks/geoenv/pkg/python/pyinspect"
)

// A Context is the resolved execution context for a provisioned environment.  It is what shell
// "activation" would set up, held explicitly instead of mutated into the parent process: the
// environment's own interpreter, its install scheme, and the extra environment variables that
// package-manager subprocesses run with.
type Context struct {
	// Interp is the environment's interpreter, as reported by the interpreter itself.
	Interp *python.Interpreter

	// ExtraEnv are KEY=VALUE pairs appended to the inherited environment of package-manager
	// subprocesses.
	ExtraEnv []string
}

// activate resolves a Context against the environment's interpreter, verifying in the process
// that the interpreter actually works.
func activate(ctx context.Context, venv *python.VirtualEnv, proxy ProxyConfig) (*Context, error) {
	interp, err := pyinspect.Inspect(ctx, venv.Python())
	if err != nil {
		return nil, err
	}
	if err := interp.Validate(); err != nil {
		return nil, err
	}
	ret := &Context{
		Interp: interp,
	}
	if proxy.HTTP != "" {
		ret.ExtraEnv = append(ret.ExtraEnv, "HTTP_PROXY="+proxy.HTTP)
	}
	if proxy.HTTPS != "" {
		ret.ExtraEnv = append(ret.ExtraEnv, "HTTPS_PROXY="+proxy.HTTPS)
	}
	return ret, nil
}

// Command builds a command that runs the environment's interpreter.
func (ec *Context) Command(ctx context.Context, args ...string) *dexec.Cmd {
	cmd := dexec.CommandContext(ctx, ec.Interp.Exe, args...)
	if len(ec.ExtraEnv) > 0 {
		cmd.Env = append(os.Environ(), ec.ExtraEnv...)
	}
	return cmd
}

// Pip builds a `python -m pip` command.
func (ec *Context) Pip(ctx context.Context, args ...string) *dexec.Cmd {
	return ec.Command(ctx, append([]string{"-m", "pip"}, args...)...)
}
