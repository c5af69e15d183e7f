// Package pyinspect determines information about a Python environment by asking the interpreter
// itself.
package pyinspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/datawire/dlib/dexec"

	"github.com/modelworks/geoenv/pkg/python"
)

// inspectScript dumps the interpreter facts as JSON on stdout.  It needs the 'packaging' and
// 'pip' distributions to be importable, which they are in any venv with pip installed.
const inspectScript = `
import json
import os
import sys
from packaging.tags import sys_tags
from pip._internal.locations import get_scheme

version_info_slots = ['major', 'minor', 'micro', 'releaselevel', 'serial']

scheme = get_scheme("")

json.dump({
  "executable": sys.executable,
  "windows": os.name == "nt",
  "version_info": {slot: getattr(sys.version_info, slot) for slot in version_info_slots},
  "scheme": {slot: getattr(scheme, slot) for slot in scheme.__slots__},
  "tags": [str(tag) for tag in sys_tags()],
}, sys.stdout)
`

// Inspect runs the interpreter named by cmdline and returns what it reports about itself.
func Inspect(ctx context.Context, cmdline ...string) (*python.Interpreter, error) {
	cmd := dexec.CommandContext(ctx, cmdline[0], append(cmdline[1:], "-c", inspectScript)...)
	cmd.DisableLogging = true
	bs, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running Python: %w", withStderr(err))
	}
	var data python.Interpreter
	if err := json.Unmarshal(bs, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CheckImport verifies that `module` is importable by the given interpreter.
func CheckImport(ctx context.Context, exe, module string) error {
	cmd := dexec.CommandContext(ctx, exe,
		"-c", "import importlib, sys; importlib.import_module(sys.argv[1])", module)
	if _, err := cmd.Output(); err != nil {
		return fmt.Errorf("import %q: %w", module, withStderr(err))
	}
	return nil
}

// withStderr folds a failed subprocess's captured stderr into the error message, indented so it
// reads as a quote.
func withStderr(err error) error {
	var exitErr *dexec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		err = fmt.Errorf("%w:\n > %s", err,
			strings.Join(strings.Split(strings.TrimRight(string(exitErr.Stderr), "\n"), "\n"), "\n > "))
	}
	return err
}
