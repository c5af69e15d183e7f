package kernelspec_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/kernelspec"
)

func writeSpec(t *testing.T, prefix, name string, spec kernelspec.Spec) {
	t.Helper()
	dir := kernelspec.Dir(prefix, name)
	require.NoError(t, os.MkdirAll(dir, 0o777))
	content, err := json.Marshal(spec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kernel.json"), content, 0o666))
}

func TestLookup(t *testing.T) {
	t.Parallel()
	prefix := t.TempDir()
	writeSpec(t, prefix, "geostack", kernelspec.Spec{
		Argv:        []string{"python", "-m", "ipykernel_launcher", "-f", "{connection_file}"},
		DisplayName: "Geostack (py39)",
		Language:    "python",
	})

	spec, err := kernelspec.Lookup(prefix, "geostack")
	require.NoError(t, err)
	assert.Equal(t, "Geostack (py39)", spec.DisplayName)
	assert.Equal(t, "python", spec.Language)

	_, err = kernelspec.Lookup(prefix, "no-such-kernel")
	assert.True(t, os.IsNotExist(err))
}

func TestList(t *testing.T) {
	t.Parallel()
	prefix := t.TempDir()

	names, err := kernelspec.List(prefix)
	require.NoError(t, err)
	assert.Empty(t, names)

	writeSpec(t, prefix, "zeta", kernelspec.Spec{Language: "python"})
	writeSpec(t, prefix, "alpha", kernelspec.Spec{Language: "python"})
	// A directory without a kernel.json is not a kernel.
	require.NoError(t, os.MkdirAll(kernelspec.Dir(prefix, "broken"), 0o777))

	names, err = kernelspec.List(prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestRegister(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("test stub interpreter is a shell script")
	}
	ctx := dlog.NewTestContext(t, true)
	prefix := t.TempDir()

	// A stand-in for `python -m ipykernel install` that writes the
	// kernelspec the way the real thing does.
	stub := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(stub, []byte(`#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
		--prefix) prefix="$2"; shift 2;;
		--name) name="$2"; shift 2;;
		--display-name) display="$2"; shift 2;;
		*) shift;;
	esac
done
mkdir -p "$prefix/share/jupyter/kernels/$name"
printf '{"argv":["python","-m","ipykernel_launcher","-f","{connection_file}"],"display_name":"%s","language":"python"}' "$display" \
	> "$prefix/share/jupyter/kernels/$name/kernel.json"
`), 0o777))

	spec, err := kernelspec.Register(ctx, stub, prefix, "geostack", "Geostack (py39)")
	require.NoError(t, err)
	assert.Equal(t, "Geostack (py39)", spec.DisplayName)

	names, err := kernelspec.List(prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"geostack"}, names)
}
