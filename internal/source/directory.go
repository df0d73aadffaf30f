package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Directory is a DirectoryHandle backed by an afero filesystem
type Directory struct {
	fs   afero.Fs
	path string
}

// OpenDirectory returns a handle for path, which must be an existing directory
func OpenDirectory(fs afero.Fs, path string) (*Directory, error) {
	clean := filepath.Clean(path)

	info, err := fs.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to access path %s: %w", clean, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", clean)
	}

	return &Directory{fs: fs, path: clean}, nil
}

// Name returns the folder's own name, as a picker would report it
func (d *Directory) Name() string {
	name := filepath.Base(d.path)
	if vol := filepath.VolumeName(d.path); vol != "" && (d.path == vol || d.path == vol+string(filepath.Separator)) {
		return vol
	}
	return name
}

// Location returns the local path the handle was opened from
func (d *Directory) Location() string {
	return d.path
}

// Entries lists the folder's children in the order afero yields them
func (d *Directory) Entries() ([]Entry, error) {
	infos, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, &dirEntry{
			fs:   d.fs,
			path: filepath.Join(d.path, info.Name()),
			info: info,
		})
	}
	return entries, nil
}

// IsSameEntry reports whether other refers to the same folder on disk
func (d *Directory) IsSameEntry(other DirectoryHandle) bool {
	o, ok := other.(*Directory)
	if !ok {
		return false
	}
	if d.fs != o.fs {
		return false
	}
	if d.path == o.path {
		return true
	}

	a, errA := d.fs.Stat(d.path)
	b, errB := o.fs.Stat(o.path)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(a, b)
}

type dirEntry struct {
	fs   afero.Fs
	path string
	info os.FileInfo
}

func (e *dirEntry) Name() string {
	return e.info.Name()
}

func (e *dirEntry) IsDir() bool {
	return e.info.IsDir()
}

func (e *dirEntry) Directory() DirectoryHandle {
	if !e.info.IsDir() {
		return nil
	}
	return &Directory{fs: e.fs, path: e.path}
}

func (e *dirEntry) GetFile() (FileHandle, error) {
	if e.info.IsDir() {
		return nil, ErrNotAFile
	}

	// Probe readability up front so the walk can skip the file
	f, err := e.fs.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", e.path, err)
	}
	stat, err := f.Stat()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", e.path, err)
	}

	return &File{fs: e.fs, path: e.path, size: stat.Size()}, nil
}

// File is a FileHandle backed by an afero filesystem
type File struct {
	fs      afero.Fs
	path    string
	size    int64
	relPath string
}

func (f *File) Name() string {
	return filepath.Base(f.path)
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) Open() (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}

// Location returns the local path of the file
func (f *File) Location() string {
	return f.path
}

// RelativePath returns the root-relative path captured in fallback mode,
// or "" when the file was picked on its own
func (f *File) RelativePath() string {
	return f.relPath
}
