package models

import (
	"github.com/cheerioskun/textfinder/internal/source"
)

// FallbackRootName names a fallback selection whose files carry no folder
const FallbackRootName = "Selected Files"

// SelectedFolder is one folder root picked by the user
type SelectedFolder struct {
	RootName string                 `json:"root_name"` // Key used to look up the base path
	Handle   source.DirectoryHandle `json:"-"`         // nil in fallback mode
	Fallback []source.FileHandle    `json:"-"`         // Captured flat list in fallback mode
	Source   string                 `json:"-"`         // Local folder a fallback list was read from
	BasePath string                 `json:"base_path"` // User-entered absolute path
}

// IsFallback reports whether the folder came from a flat file selection
func (f *SelectedFolder) IsFallback() bool {
	return f.Handle == nil
}

// Location returns the local path of the folder when the handle knows it
func (f *SelectedFolder) Location() string {
	if loc, ok := f.Handle.(source.Locator); ok {
		return loc.Location()
	}
	return f.Source
}
