package python_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/python"
)

func TestVersionInfoPEP440(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		Input    python.VersionInfo
		Expected string
		Err      bool
	}{
		"final":     {python.VersionInfo{Major: 3, Minor: 9, Micro: 7, ReleaseLevel: "final"}, "3.9.7", false},
		"alpha":     {python.VersionInfo{Major: 3, Minor: 11, Micro: 0, ReleaseLevel: "alpha", Serial: 2}, "3.11.0a0", false},
		"beta":      {python.VersionInfo{Major: 3, Minor: 10, Micro: 0, ReleaseLevel: "beta"}, "3.10.0b0", false},
		"candidate": {python.VersionInfo{Major: 3, Minor: 8, Micro: 1, ReleaseLevel: "candidate"}, "3.8.1rc0", false},
		"bogus":     {python.VersionInfo{Major: 3, Minor: 9, Micro: 7, ReleaseLevel: "nightly"}, "", true},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ver, err := tc.Input.PEP440()
			if tc.Err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, ver.String())
		})
	}
}

func TestInterpreterValidate(t *testing.T) {
	t.Parallel()
	goodScheme := python.Scheme{
		PureLib: "/opt/py/lib/python3.9/site-packages",
		PlatLib: "/opt/py/lib64/python3.9/site-packages",
		Headers: "/opt/py/include/python3.9",
		Scripts: "/opt/py/bin",
		Data:    "/opt/py",
	}
	goodVersion := &python.VersionInfo{Major: 3, Minor: 9, Micro: 7, ReleaseLevel: "final"}

	testcases := map[string]struct {
		Input python.Interpreter
		Err   string
	}{
		"ok": {
			Input: python.Interpreter{Exe: "/opt/py/bin/python3", VersionInfo: goodVersion, Scheme: goodScheme},
		},
		"no-exe": {
			Input: python.Interpreter{VersionInfo: goodVersion, Scheme: goodScheme},
			Err:   "does not specify an executable path",
		},
		"relative-exe": {
			Input: python.Interpreter{Exe: "bin/python3", VersionInfo: goodVersion, Scheme: goodScheme},
			Err:   "not an absolute path",
		},
		"no-version": {
			Input: python.Interpreter{Exe: "/opt/py/bin/python3", Scheme: goodScheme},
			Err:   "does not specify version_info",
		},
		"relative-scheme": {
			Input: python.Interpreter{
				Exe:         "/opt/py/bin/python3",
				VersionInfo: goodVersion,
				Scheme: python.Scheme{
					PureLib: "lib/python3.9/site-packages",
					PlatLib: goodScheme.PlatLib,
					Headers: goodScheme.Headers,
					Scripts: goodScheme.Scripts,
					Data:    goodScheme.Data,
				},
			},
			Err: `install scheme "purelib" is not an absolute path`,
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			err := tc.Input.Validate()
			if tc.Err == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.Err)
			}
		})
	}
}
