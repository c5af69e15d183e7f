package provision_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/provision"
	"github.com/modelworks/geoenv/pkg/python/pep440"
)

func mustParseSpecifier(t *testing.T, str string) pep440.Specifier {
	t.Helper()
	spec, err := pep440.ParseSpecifier(str)
	require.NoError(t, err)
	return spec
}

func TestParseRequirements(t *testing.T) {
	t.Parallel()
	testcases := []struct {
		Input  string
		Output []provision.Requirement
		Err    bool
	}{
		{Input: "", Output: nil},
		{Input: "# nothing but comments\n\n  # and blanks\n", Output: nil},
		{
			Input: "requests ==2.23.0\n",
			Output: []provision.Requirement{
				{Name: "requests", Specifier: mustParseSpecifier(t, "==2.23.0")},
			},
		},
		{
			Input: "pandas >=1.0, <2  # pinned loosely on purpose\n",
			Output: []provision.Requirement{
				{Name: "pandas", Specifier: mustParseSpecifier(t, ">=1.0, <2")},
			},
		},
		{
			Input: "requests ==2.23.0\t# pinned\n",
			Output: []provision.Requirement{
				{Name: "requests", Specifier: mustParseSpecifier(t, "==2.23.0")},
			},
		},
		{
			Input: "ipython\n",
			Output: []provision.Requirement{
				{Name: "ipython"},
			},
		},
		{
			Input: "geopandas[all] ==0.8.1\n",
			Output: []provision.Requirement{
				{
					Name:      "geopandas",
					Extras:    []string{"all"},
					Specifier: mustParseSpecifier(t, "==0.8.1"),
				},
			},
		},
		{
			Input: "pywin32 ==228 ; sys_platform == \"win32\"\n",
			Output: []provision.Requirement{
				{
					Name:      "pywin32",
					Specifier: mustParseSpecifier(t, "==228"),
					Marker:    `sys_platform == "win32"`,
				},
			},
		},
		{
			Input: "shapely ==1.7.0, \\\n  !=1.7.0.post1\n",
			Output: []provision.Requirement{
				{Name: "shapely", Specifier: mustParseSpecifier(t, "==1.7.0, !=1.7.0.post1")},
			},
		},
		{Input: "-r other-requirements.txt\n", Err: true},
		{Input: "--index-url https://pypi.corp/simple\n", Err: true},
		{Input: "requests ===bogus===\n", Err: true},
	}
	for i, tc := range testcases {
		tc := tc
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			reqs, err := provision.ParseRequirements([]byte(tc.Input))
			if tc.Err {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Output, reqs)
			}
		})
	}
}

func TestParseRequirementsLineNumbers(t *testing.T) {
	t.Parallel()

	// Continuations fold lines 1-2 into one logical line; the bad requirement is on
	// physical line 3.
	_, err := provision.ParseRequirements([]byte(
		"shapely ==1.7.0, \\\n  !=1.7.0.post1\nnumpy ===bogus===\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirements line 3")

	// An error inside a folded line names the line the fold started on.
	_, err = provision.ParseRequirements([]byte(
		"requests ==2.23.0\npandas \\\n  ===bogus===\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirements line 2")
}
