package models

import (
	"strings"

	"github.com/cheerioskun/textfinder/internal/source"
)

// CollectedFile is a file admitted by the extension filter
type CollectedFile struct {
	Name         string            `json:"name"`          // Unique key within the session
	RelativePath string            `json:"relative_path"` // root/.../name
	Size         int64             `json:"size"`          // File size in bytes
	Handle       source.FileHandle `json:"-"`             // Content handle
}

// FileSet is the aggregate of collected files, keyed by bare file name.
//
// The name->content and name->relative path views always share one key set.
// Putting a name that is already present replaces the earlier entry but keeps
// its position, so the last write wins and upload order stays stable.
type FileSet struct {
	entries map[string]CollectedFile
	order   []string
}

// NewFileSet creates an empty FileSet
func NewFileSet() *FileSet {
	return &FileSet{
		entries: make(map[string]CollectedFile),
		order:   make([]string, 0),
	}
}

// Put adds or replaces a file
func (fs *FileSet) Put(file CollectedFile) {
	if _, exists := fs.entries[file.Name]; !exists {
		fs.order = append(fs.order, file.Name)
	}
	fs.entries[file.Name] = file
}

// Merge copies every entry of other into fs, other's entries winning
func (fs *FileSet) Merge(other *FileSet) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		fs.Put(other.entries[name])
	}
}

// Get returns the file stored under name
func (fs *FileSet) Get(name string) (CollectedFile, bool) {
	file, ok := fs.entries[name]
	return file, ok
}

// Path returns the relative path stored under name
func (fs *FileSet) Path(name string) (string, bool) {
	file, ok := fs.entries[name]
	if !ok {
		return "", false
	}
	return file.RelativePath, true
}

// Paths returns the name -> relative path mapping
func (fs *FileSet) Paths() map[string]string {
	paths := make(map[string]string, len(fs.entries))
	for name, file := range fs.entries {
		paths[name] = file.RelativePath
	}
	return paths
}

// Files returns the collected files in insertion order
func (fs *FileSet) Files() []CollectedFile {
	files := make([]CollectedFile, 0, len(fs.order))
	for _, name := range fs.order {
		files = append(files, fs.entries[name])
	}
	return files
}

// Names returns the file names in insertion order
func (fs *FileSet) Names() []string {
	names := make([]string, len(fs.order))
	copy(names, fs.order)
	return names
}

// Len returns the number of files in the set
func (fs *FileSet) Len() int {
	return len(fs.entries)
}

// IsEmpty returns true if the FileSet contains no files
func (fs *FileSet) IsEmpty() bool {
	return len(fs.entries) == 0
}

// TotalSize returns the summed size of every file
func (fs *FileSet) TotalSize() int64 {
	var total int64
	for _, file := range fs.entries {
		total += file.Size
	}
	return total
}

// CountUnder returns how many files have a relative path below root
func (fs *FileSet) CountUnder(root string) int {
	count := 0
	for _, file := range fs.entries {
		if file.RelativePath == root || strings.HasPrefix(file.RelativePath, root+"/") {
			count++
		}
	}
	return count
}

// Clear empties the set
func (fs *FileSet) Clear() {
	fs.entries = make(map[string]CollectedFile)
	fs.order = fs.order[:0]
}

// Clone creates a copy of the FileSet sharing the underlying handles
func (fs *FileSet) Clone() *FileSet {
	clone := &FileSet{
		entries: make(map[string]CollectedFile, len(fs.entries)),
		order:   make([]string, len(fs.order)),
	}
	copy(clone.order, fs.order)
	for name, file := range fs.entries {
		clone.entries[name] = file
	}
	return clone
}
