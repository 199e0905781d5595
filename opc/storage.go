package opc

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Storage receives the finished parts of a package. A Package keeps at most
// one entry returned by Create open at a time.
type Storage interface {
	Create(name string) (io.WriteCloser, error)
	Close() error
}

// DirStorage lays the parts out as plain files under Dir, for inspecting
// the generated XML.
type DirStorage struct {
	Dir string
}

// ZipStorage writes the parts as entries of a ZIP archive.
type ZipStorage struct {
	z      *zip.Writer
	method uint16
}

// NewDirStorage returns a storage rooted at dir. Missing directories are
// created on demand.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{
		Dir: dir,
	}
}

// Create creates the file of part name.
func (ds *DirStorage) Create(name string) (io.WriteCloser, error) {
	name = strings.TrimPrefix(name, "/")
	fn := filepath.Join(ds.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fn), 0777); err != nil {
		return nil, err
	}
	return os.Create(fn)
}

func (ds *DirStorage) Close() error { return nil }

// NewZipStorage returns a ZipStorage writing to out at the default deflate
// level.
func NewZipStorage(out io.Writer) *ZipStorage {
	return NewZipStorageLevel(out, flate.DefaultCompression)
}

// NewZipStorageLevel is NewZipStorage with an explicit deflate level.
// flate.NoCompression stores entries uncompressed.
func NewZipStorageLevel(out io.Writer, level int) *ZipStorage {
	zs := &ZipStorage{z: zip.NewWriter(out), method: zip.Deflate}
	if level == flate.NoCompression {
		zs.method = zip.Store
		return zs
	}
	zs.z.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	return zs
}

// Create starts a new entry in the archive. The previous entry, if any,
// is finished implicitly.
func (zs *ZipStorage) Create(name string) (io.WriteCloser, error) {
	name = strings.TrimPrefix(name, "/")
	f, err := zs.z.CreateHeader(&zip.FileHeader{Name: name, Method: zs.method})
	if err != nil {
		return nil, err
	}
	return nopCloser{f}, nil
}

// Close writes the central directory. The archive is unreadable without it.
func (zs *ZipStorage) Close() error {
	return zs.z.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
