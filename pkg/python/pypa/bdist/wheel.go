package bdist

import (
	"archive/zip"
	"bufio"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"net/textproto"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dlog"

	"github.com/modelworks/geoenv/pkg/python/pep425"
	"github.com/modelworks/geoenv/pkg/python/pep440"
)

//nolint:gochecknoglobals // Would be 'const'.
var specVersion, _ = pep440.ParseVersion("1.0")

// A Wheel is an opened wheel ("bdist") archive.
type Wheel struct {
	zip    *zip.Reader
	closer io.Closer

	cachedDistInfoDir string
}

// OpenWheel opens a wheel file on disk.  The caller must Close it.
func OpenWheel(filename string) (*Wheel, error) {
	zipReader, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("bdist.OpenWheel: %w", err)
	}
	return &Wheel{
		zip:    &zipReader.Reader,
		closer: zipReader,

		cachedDistInfoDir: "", // don't know it yet
	}, nil
}

// NewWheel wraps an already-open zip reader (for in-memory wheels).
func NewWheel(zipReader *zip.Reader) *Wheel {
	return &Wheel{
		zip:    zipReader,
		closer: nil,

		cachedDistInfoDir: "",
	}
}

func (wh *Wheel) Close() error {
	if wh.closer == nil {
		return nil
	}
	return wh.closer.Close()
}

// Open opens a single file inside the archive.
func (wh *Wheel) Open(filename string) (io.ReadCloser, error) {
	filename = path.Clean(filename)
	for _, file := range wh.zip.File {
		if path.Clean(file.Name) == filename {
			return file.Open()
		}
	}
	return nil, fmt.Errorf("%w in wheel zip archive: %q", fs.ErrNotExist, filename)
}

// DistInfoDir returns the "{name}.dist-info" directory for the wheel file.
//
// This is based off of `pip/_internal/utils/wheel.py:wheel_dist_info_dir()`, since PEP 427
// doesn't actually have much to say about resolving ambiguity.
func (wh *Wheel) DistInfoDir() (string, error) {
	if wh.cachedDistInfoDir != "" {
		return wh.cachedDistInfoDir, nil
	}
	infoDirs := make(map[string]struct{})
	for _, file := range wh.zip.File {
		dirname := strings.Split(path.Clean(file.FileHeader.Name), "/")[0]
		if !strings.HasSuffix(dirname, ".dist-info") {
			continue
		}
		infoDirs[dirname] = struct{}{}
	}

	switch len(infoDirs) {
	case 0:
		return "", fmt.Errorf(".dist-info directory not found")
	case 1:
		for infoDir := range infoDirs {
			wh.cachedDistInfoDir = infoDir
			return infoDir, nil
		}
		panic("not reached")
	default:
		list := make([]string, 0, len(infoDirs))
		for dir := range infoDirs {
			list = append(list, dir)
		}
		sort.Strings(list)
		return "", fmt.Errorf("multiple .dist-info directories found: %v", list)
	}
}

// Metadata parses "{name}.dist-info/WHEEL", which is metadata about the archive itself in basic
// key: value format:
//
//	Wheel-Version: 1.0
//	Generator: bdist_wheel 1.0
//	Root-Is-Purelib: true
//	Tag: py2-none-any
//	Tag: py3-none-any
func (wh *Wheel) Metadata() (textproto.MIMEHeader, error) {
	infoDir, err := wh.DistInfoDir()
	if err != nil {
		return nil, err
	}
	wheelFile, err := wh.Open(path.Join(infoDir, "WHEEL"))
	if err != nil {
		return nil, err
	}
	defer wheelFile.Close()

	// textproto.Reader.ReadMIMEHeader() expects a blank line to mark the end of the header and
	// the start of the body.  But in WHEEL there is no body, so the blank line should be
	// optional.  So use an io.MultiReader to add a few trailing CRLFs to keep ReadMIMEHeader
	// happy no matter what WHEEL's trailing newline situation is.
	kvReader := textproto.NewReader(bufio.NewReader(io.MultiReader(
		wheelFile,
		strings.NewReader("\r\n\r\n\r\n"),
	)))
	return kvReader.ReadMIMEHeader()
}

// CheckVersion enforces the Wheel-Version compatibility rules: warn if the minor version is
// greater than what this parser implements, fail if the major version is.
func (wh *Wheel) CheckVersion(ctx context.Context) error {
	metadata, err := wh.Metadata()
	if err != nil {
		return fmt.Errorf("parse .dist-info/WHEEL: %w", err)
	}
	wheelVersion, err := pep440.ParseVersion(metadata.Get("Wheel-Version"))
	if err != nil {
		return fmt.Errorf("parse Wheel-Version: %w", err)
	}
	if wheelVersion.Major() > specVersion.Major() {
		return fmt.Errorf("wheel file's Wheel-Version (%s) is not compatible with this wheel parser",
			wheelVersion)
	}
	if wheelVersion.Cmp(*specVersion) > 0 {
		dlog.Warnf(ctx, "wheel file's Wheel-Version (%s) is newer than this wheel parser", wheelVersion)
	}
	return nil
}

// Tags returns the expanded compatibility tags from the WHEEL metadata.
func (wh *Wheel) Tags() ([]pep425.Tag, error) {
	metadata, err := wh.Metadata()
	if err != nil {
		return nil, err
	}
	tagStrs, ok := metadata["Tag"]
	if !ok {
		return nil, fmt.Errorf(".dist-info/WHEEL does not list any Tags")
	}
	tags := make([]pep425.Tag, 0, len(tagStrs))
	for _, tagStr := range tagStrs {
		tag, err := pep425.ParseTag(tagStr)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// RECORD hashes must be sha256 or better; specifically, md5 and sha1 are not permitted.  The
// spec is an open-ended list of hashes, so here's what pip 20.3.4
// pip/_internal/utils/hashes.py includes:
//
//nolint:gochecknoglobals // Would be 'const'.
var strongHashes = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// VerifyRecord verifies every hash and size in "{name}.dist-info/RECORD" against the archive
// contents, and that every file in the archive is mentioned in RECORD.  All row-level problems
// are aggregated into one error.
func (wh *Wheel) VerifyRecord() error {
	distInfoDir, err := wh.DistInfoDir()
	if err != nil {
		return err
	}

	todo := make(map[string]struct{})
	for _, file := range wh.zip.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(file.Name)
		switch name {
		case path.Join(distInfoDir, "RECORD.jws"):
			// signature files can't be mentioned in RECORD
		case path.Join(distInfoDir, "RECORD.p7s"):
			// signature files can't be mentioned in RECORD
		default:
			todo[name] = struct{}{}
		}
	}

	recordData, err := func() ([][]string, error) {
		recordName := path.Join(distInfoDir, "RECORD")
		reader, err := wh.Open(recordName)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = reader.Close()
		}()
		data, err := csv.NewReader(reader).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", recordName, err)
		}
		return data, nil
	}()
	if err != nil {
		return err
	}

	checkFile := func(filename, algo string) (hashsum string, size int64, err error) {
		reader, err := wh.Open(filename)
		if err != nil {
			return "", 0, err
		}
		defer func() {
			_ = reader.Close()
		}()

		var (
			hasher hash.Hash
			dst    = io.Discard
		)
		if algo != "" {
			newHasher, ok := strongHashes[algo]
			if !ok {
				return "", 0, fmt.Errorf("unsupported hash algorithm: %q", algo)
			}
			hasher = newHasher()
			dst = hasher
		}

		size, err = io.Copy(dst, reader)
		if err != nil {
			return "", 0, err
		}

		if hasher != nil {
			hashsum = algo + "=" + base64.RawURLEncoding.EncodeToString(hasher.Sum(nil))
		}

		return hashsum, size, err
	}

	var errs derror.MultiError
	for i, row := range recordData {
		if len(row) != 3 {
			errs = append(errs, fmt.Errorf("RECORD row %d: does not have 3 columns: %q", i, row))
			continue
		}
		name, recHashsum, recSize := path.Clean(row[0]), row[1], row[2]
		delete(todo, name)
		if recHashsum == "" || recSize == "" {
			switch name {
			case path.Join(distInfoDir, "RECORD"):
				// RECORD can't contain a hash of itself
			default:
				errs = append(errs, fmt.Errorf("RECORD row %d: missing hash or size: %q", i, row))
			}
		}

		algo := strings.SplitN(recHashsum, "=", 2)[0]
		actHashsum, actSize, err := checkFile(name, algo)
		if err != nil {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: %w",
				i, name, err))
			continue
		}
		if recHashsum != "" && actHashsum != recHashsum {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: checksum mismatch: RECORD=%q actual=%q",
				i, name, recHashsum, actHashsum))
		}
		if recSize != "" && strconv.FormatInt(actSize, 10) != recSize {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: size mismatch: RECORD=%s actual=%d",
				i, name, recSize, actSize))
		}
	}

	if len(todo) > 0 {
		todoNames := make([]string, 0, len(todo))
		for name := range todo {
			todoNames = append(todoNames, name)
		}
		sort.Strings(todoNames)
		errs = append(errs, fmt.Errorf("files not mentioned in RECORD: %q", todoNames))
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
