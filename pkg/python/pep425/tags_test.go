package pep425_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/python/pep425"
)

func TestParseTag(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		InStr  string
		OutVal pep425.Tag
		OutErr bool
	}{
		"cpython-win":  {"cp39-cp39-win_amd64", pep425.Tag{"cp39", "cp39", "win_amd64"}, false},
		"universal":    {"py2.py3-none-any", pep425.Tag{"py2.py3", "none", "any"}, false},
		"manylinux":    {"cp39-cp39-manylinux_2_17_x86_64", pep425.Tag{"cp39", "cp39", "manylinux_2_17_x86_64"}, false},
		"too-few":      {"cp39-cp39", pep425.Tag{}, true},
		"empty-member": {"cp39--win_amd64", pep425.Tag{}, true},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			val, err := pep425.ParseTag(tc.InStr)
			if tc.OutErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.OutVal, val)
			assert.Equal(t, tc.InStr, val.String())
		})
	}
}

func TestDecompress(t *testing.T) {
	t.Parallel()
	compressed := pep425.Tag{"py2.py3", "none", "any"}
	assert.Equal(t, []pep425.Tag{
		{"py2", "none", "any"},
		{"py3", "none", "any"},
	}, compressed.Decompress())
}

func TestInstaller(t *testing.T) {
	t.Parallel()
	// mimics a cp39 win_amd64 CPython, most-preferred first
	inst := pep425.Installer{
		{"cp39", "cp39", "win_amd64"},
		{"cp39", "abi3", "win_amd64"},
		{"cp39", "none", "win_amd64"},
		{"py3", "none", "win_amd64"},
		{"py39", "none", "any"},
		{"py3", "none", "any"},
	}

	assert.True(t, inst.Supports(pep425.Tag{"cp39", "cp39", "win_amd64"}))
	assert.True(t, inst.Supports(pep425.Tag{"py2.py3", "none", "any"}))
	assert.False(t, inst.Supports(pep425.Tag{"cp38", "cp38", "win_amd64"}))
	assert.False(t, inst.Supports(pep425.Tag{"cp39", "cp39", "manylinux1_x86_64"}))

	assert.Equal(t, 1, inst.Preference(pep425.Tag{"cp39", "cp39", "win_amd64"}))
	assert.Equal(t, 6, inst.Preference(pep425.Tag{"py2.py3", "none", "any"}))
	// unsupported tags sort after everything
	assert.Equal(t, len(inst)+1, inst.Preference(pep425.Tag{"cp38", "cp38", "win_amd64"}))
}
