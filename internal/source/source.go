// Package source abstracts the folders and files a user hands to textfinder.
//
// A DirectoryHandle is the capability-based view (enumerate children, resolve
// files, compare identity). The fallback view is a flat []FileHandle where
// every file optionally carries its own root-relative path.
package source

import (
	"errors"
	"io"
)

// ErrNotAFile is returned when GetFile is called on a subfolder entry
var ErrNotAFile = errors.New("entry is not a file")

// FileHandle is a resolved, readable file
type FileHandle interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// RelativePather is implemented by fallback files that know their path
// relative to the selected folder (root/sub/name).
type RelativePather interface {
	RelativePath() string
}

// Locator is implemented by handles that map onto a real local path
type Locator interface {
	Location() string
}

// Entry is a single child of a DirectoryHandle
type Entry interface {
	Name() string
	IsDir() bool
	// Directory returns the subfolder handle, or nil for files
	Directory() DirectoryHandle
	// GetFile resolves a file entry; it fails for unreadable files
	GetFile() (FileHandle, error)
}

// DirectoryHandle is an opaque reference to a selected folder
type DirectoryHandle interface {
	Name() string
	Entries() ([]Entry, error)
	IsSameEntry(other DirectoryHandle) bool
}
