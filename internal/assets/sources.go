package assets

import (
	"archive/zip"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DirSource serves assets from a directory.
type DirSource string

// Open implements Source.
func (d DirSource) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
}

func (d DirSource) String() string {
	return "dir:" + string(d)
}

// FSSource serves assets from an fs.FS, such as an embed.FS.
type FSSource struct {
	FS   fs.FS
	Name string
}

// Open implements Source.
func (s FSSource) Open(name string) (io.ReadCloser, error) {
	return s.FS.Open(name)
}

func (s FSSource) String() string {
	return "fs:" + s.Name
}

// ApkAssetDir is the directory packaged assets live under in an APK.
const ApkAssetDir = "assets"

// ZipSource serves assets from a zip archive or an Android APK. Names are
// looked up at the archive root and under assets/.
type ZipSource struct {
	path   string
	reader *zip.ReadCloser
	files  map[string]*zip.File
}

// OpenZip opens an archive.
func OpenZip(filename string) (*ZipSource, error) {
	r, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}

	z := &ZipSource{
		path:   filename,
		reader: r,
		files:  make(map[string]*zip.File, len(r.File)),
	}
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			z.files[f.Name] = f
		}
	}
	return z, nil
}

// Open implements Source.
func (z *ZipSource) Open(name string) (io.ReadCloser, error) {
	for _, key := range []string{name, path.Join(ApkAssetDir, name)} {
		if f, ok := z.files[key]; ok {
			return f.Open()
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Len returns the number of files in the archive.
func (z *ZipSource) Len() int {
	return len(z.files)
}

// Close closes the archive.
func (z *ZipSource) Close() error {
	return z.reader.Close()
}

func (z *ZipSource) String() string {
	return "zip:" + z.path
}

//go:embed shaders
var builtin embed.FS

// Builtin returns the shaders compiled into the binary. They are GLSL ES
// 1.00 and serve both the GLES and the desktop renderer.
func Builtin() Source {
	sub, err := fs.Sub(builtin, "shaders")
	if err != nil {
		panic(fmt.Sprintf("embedded shaders: %v", err))
	}
	return FSSource{FS: sub, Name: "builtin"}
}
