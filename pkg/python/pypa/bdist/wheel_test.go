package bdist_test

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelworks/geoenv/pkg/python/pep425"
	"github.com/modelworks/geoenv/pkg/python/pypa/bdist"
)

// buildWheel builds an in-memory wheel archive containing the given files plus a correct RECORD,
// then lets `mangle` mess with the file set before the zip is written.
func buildWheel(t *testing.T, infoDir string, files map[string]string, mangle func(map[string]string)) *bdist.Wheel {
	t.Helper()

	full := make(map[string]string, len(files)+1)
	for name, content := range files {
		full[name] = content
	}

	var record strings.Builder
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sum := sha256.Sum256([]byte(files[name]))
		fmt.Fprintf(&record, "%s,sha256=%s,%d\n",
			name, base64.RawURLEncoding.EncodeToString(sum[:]), len(files[name]))
	}
	fmt.Fprintf(&record, "%s/RECORD,,\n", infoDir)
	full[infoDir+"/RECORD"] = record.String()

	if mangle != nil {
		mangle(full)
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for name, content := range full {
		w, err := zipWriter.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zipWriter.Close())

	zipReader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return bdist.NewWheel(zipReader)
}

func baseFiles(infoDir, wheelVersion string) map[string]string {
	return map[string]string{
		"rtree/__init__.py": "from .index import Index\n",
		"rtree/index.py":    "class Index:\n    pass\n",
		infoDir + "/METADATA": "" +
			"Metadata-Version: 2.1\n" +
			"Name: Rtree\n" +
			"Version: 0.9.4\n",
		infoDir + "/WHEEL": "" +
			"Wheel-Version: " + wheelVersion + "\n" +
			"Generator: bdist_wheel (0.34.2)\n" +
			"Root-Is-Purelib: false\n" +
			"Tag: cp39-cp39-win_amd64\n",
	}
}

func TestVerifyRecord(t *testing.T) {
	t.Parallel()
	const infoDir = "Rtree-0.9.4.dist-info"

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), nil)
		assert.NoError(t, wh.VerifyRecord())
	})

	t.Run("tampered-content", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), func(full map[string]string) {
			full["rtree/index.py"] = "class Index:\n    tampered = True\n"
		})
		err := wh.VerifyRecord()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum mismatch")
		assert.Contains(t, err.Error(), "size mismatch")
	})

	t.Run("unlisted-file", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), func(full map[string]string) {
			full["rtree/sneaky.py"] = "oops\n"
		})
		err := wh.VerifyRecord()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not mentioned in RECORD")
	})

	t.Run("missing-file", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), func(full map[string]string) {
			delete(full, "rtree/index.py")
		})
		err := wh.VerifyRecord()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"rtree/index.py"`)
	})

	t.Run("weak-hash", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), func(full map[string]string) {
			full[infoDir+"/RECORD"] = strings.Replace(full[infoDir+"/RECORD"], "sha256=", "md5=", 1)
		})
		err := wh.VerifyRecord()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported hash algorithm")
	})

	t.Run("no-record", func(t *testing.T) {
		t.Parallel()
		wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), func(full map[string]string) {
			delete(full, infoDir+"/RECORD")
		})
		assert.Error(t, wh.VerifyRecord())
	})
}

func TestWheelMetadata(t *testing.T) {
	t.Parallel()
	const infoDir = "Rtree-0.9.4.dist-info"
	wh := buildWheel(t, infoDir, baseFiles(infoDir, "1.0"), nil)

	gotInfoDir, err := wh.DistInfoDir()
	require.NoError(t, err)
	assert.Equal(t, infoDir, gotInfoDir)

	metadata, err := wh.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "1.0", metadata.Get("Wheel-Version"))
	assert.Equal(t, "false", metadata.Get("Root-Is-Purelib"))

	tags, err := wh.Tags()
	require.NoError(t, err)
	assert.Equal(t, []pep425.Tag{{Python: "cp39", ABI: "cp39", Platform: "win_amd64"}}, tags)
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()
	const infoDir = "Rtree-0.9.4.dist-info"
	testcases := map[string]struct {
		WheelVersion string
		OutErr       bool
	}{
		"same":        {"1.0", false},
		"newer-minor": {"1.9", false}, // warns
		"newer-major": {"2.0", true},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ctx := dlog.NewTestContext(t, true)
			wh := buildWheel(t, infoDir, baseFiles(infoDir, tc.WheelVersion), nil)
			err := wh.CheckVersion(ctx)
			if tc.OutErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
