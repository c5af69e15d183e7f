package python_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/python"
)

func TestNewVirtualEnv(t *testing.T) {
	t.Parallel()
	venv, err := python.NewVirtualEnv("some-env", "3.9")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(venv.Root))
	assert.Equal(t, runtime.GOOS == "windows", venv.Windows)

	_, err = python.NewVirtualEnv("some-env", "")
	assert.Error(t, err)
}

func TestVirtualEnvLayout(t *testing.T) {
	t.Parallel()
	posix := &python.VirtualEnv{Root: "/srv/envs/geo", Windows: false, Version: "3.9"}
	assert.Equal(t, "/srv/envs/geo/bin", posix.ScriptsDir())
	assert.Equal(t, "/srv/envs/geo/bin/python", posix.Python())
	assert.Equal(t, "/srv/envs/geo/lib/python3.9/site-packages", posix.SitePackages())
	assert.Equal(t, "/srv/envs/geo", posix.DataDir())

	windows := &python.VirtualEnv{Root: `C:\envs\geo`, Windows: true, Version: "3.9"}
	assert.Equal(t, filepath.Join(`C:\envs\geo`, "Scripts"), windows.ScriptsDir())
	assert.Equal(t, filepath.Join(`C:\envs\geo`, "Scripts", "python.exe"), windows.Python())
	assert.Equal(t, filepath.Join(`C:\envs\geo`, "Lib", "site-packages"), windows.SitePackages())
}
