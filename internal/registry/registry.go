// Package registry tracks the selected folder roots, their user-entered base
// paths and the aggregate set of collected files.
package registry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cheerioskun/textfinder/internal/collector"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/cheerioskun/textfinder/internal/utils"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrDriveRoot is returned when a bare drive root such as "C:" is picked
	ErrDriveRoot = errors.New("selecting a drive root (e.g., C:, D:) is not supported, please select one or more specific folders inside the drive")

	// ErrDuplicateFolder is returned when the same folder is added twice
	ErrDuplicateFolder = errors.New("folder has already been selected")

	// ErrEmptySelection is returned when a fallback selection has no files
	ErrEmptySelection = errors.New("no files selected")

	// ErrUnknownFolder is returned when removing a folder that is not registered
	ErrUnknownFolder = errors.New("folder is not selected")
)

var drivePattern = regexp.MustCompile(`^[A-Za-z]:[\\/]?$`)

// IsDriveRoot reports whether name is a bare drive root
func IsDriveRoot(name string) bool {
	return drivePattern.MatchString(name)
}

// NormalizeBasePath trims whitespace, strips trailing slashes and converts
// backslashes to forward slashes
func NormalizeBasePath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.TrimRight(p, `/\`)
	return strings.ReplaceAll(p, `\`, "/")
}

// Registry is the session state owned by the UI controller.
//
// Mutations (Add, AddFallback, Remove, Reset) are serialized through a
// single-slot semaphore, so a walk started by one mutation always finishes
// and lands before the next mutation starts. Readers never wait on a walk.
type Registry struct {
	collector *collector.Collector
	queue     *semaphore.Weighted

	mu        sync.RWMutex
	folders   []*models.SelectedFolder
	basePaths map[string]string
	files     *models.FileSet
}

// New creates an empty Registry
func New(c *collector.Collector) *Registry {
	if c == nil {
		c = collector.NewCollector(nil)
	}
	return &Registry{
		collector: c,
		queue:     semaphore.NewWeighted(1),
		folders:   make([]*models.SelectedFolder, 0),
		basePaths: make(map[string]string),
		files:     models.NewFileSet(),
	}
}

// Add registers a folder and merges its files into the aggregate set
func (r *Registry) Add(ctx context.Context, dir source.DirectoryHandle) (*models.SelectedFolder, error) {
	name := dir.Name()
	if IsDriveRoot(name) {
		return nil, ErrDriveRoot
	}

	if err := r.queue.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.queue.Release(1)

	r.mu.RLock()
	for _, existing := range r.folders {
		if !existing.IsFallback() && existing.Handle.IsSameEntry(dir) {
			r.mu.RUnlock()
			return nil, fmt.Errorf("folder %q: %w", name, ErrDuplicateFolder)
		}
	}
	r.mu.RUnlock()

	utils.Info("Processing folder %q", name)

	set, err := r.collector.CollectDirectory(ctx, dir, name)
	if err != nil {
		return nil, fmt.Errorf("failed to collect folder %q: %w", name, err)
	}

	folder := &models.SelectedFolder{RootName: name, Handle: dir}

	r.mu.Lock()
	r.files.Merge(set)
	r.folders = append(r.folders, folder)
	r.mu.Unlock()

	utils.Info("Added folder %q with %d file(s)", name, set.Len())
	return folder, nil
}

// AddFallback registers a flat file selection. The root name is taken from
// the first file's relative path, or FallbackRootName when it has none.
func (r *Registry) AddFallback(ctx context.Context, files []source.FileHandle) (*models.SelectedFolder, error) {
	return r.addFallback(ctx, files, "")
}

func (r *Registry) addFallback(ctx context.Context, files []source.FileHandle, location string) (*models.SelectedFolder, error) {
	if len(files) == 0 {
		return nil, ErrEmptySelection
	}

	if err := r.queue.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.queue.Release(1)

	set := r.collector.CollectFileList(files)

	name := models.FallbackRootName
	if names := set.Names(); len(names) > 0 {
		first, _ := set.Path(names[0])
		name = rootSegment(first)
	}

	captured := make([]source.FileHandle, len(files))
	copy(captured, files)
	folder := &models.SelectedFolder{RootName: name, Fallback: captured, Source: location}

	r.mu.Lock()
	r.files.Merge(set)
	r.folders = append(r.folders, folder)
	r.mu.Unlock()

	utils.Info("Added fallback selection %q with %d file(s)", name, set.Len())
	return folder, nil
}

// Remove drops a folder and rebuilds the aggregate set from scratch by
// re-walking every remaining folder in registry order. The selection only
// changes once the rebuild succeeds; a cancelled rebuild leaves it intact.
func (r *Registry) Remove(ctx context.Context, folder *models.SelectedFolder) error {
	if err := r.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.queue.Release(1)

	// Mutations hold the queue, so the folder list cannot change until we
	// release it
	r.mu.RLock()
	idx := -1
	for i, f := range r.folders {
		if f == folder {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.RUnlock()
		return ErrUnknownFolder
	}
	remaining := make([]*models.SelectedFolder, 0, len(r.folders)-1)
	remaining = append(remaining, r.folders[:idx]...)
	remaining = append(remaining, r.folders[idx+1:]...)
	r.mu.RUnlock()

	utils.Info("Removing folder %q, re-collecting files from %d remaining folder(s)", folder.RootName, len(remaining))

	rebuilt, err := r.rebuild(ctx, remaining)
	if err != nil {
		utils.Warning("Remove of folder %q abandoned: %v", folder.RootName, err)
		return err
	}

	r.mu.Lock()
	r.folders = remaining
	delete(r.basePaths, folder.RootName)
	r.files = rebuilt
	r.mu.Unlock()
	return nil
}

// rebuild walks the given folders in order into a fresh set
func (r *Registry) rebuild(ctx context.Context, folders []*models.SelectedFolder) (*models.FileSet, error) {
	out := models.NewFileSet()
	for _, f := range folders {
		if f.IsFallback() {
			out.Merge(r.collector.CollectFileList(f.Fallback))
			continue
		}

		set, err := r.collector.CollectDirectory(ctx, f.Handle, f.RootName)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			utils.Warning("Failed to re-collect folder %q: %v", f.RootName, err)
			continue
		}
		out.Merge(set)
	}
	return out, nil
}

// Reset forgets every folder, base path and file
func (r *Registry) Reset(ctx context.Context) error {
	if err := r.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.queue.Release(1)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders = make([]*models.SelectedFolder, 0)
	r.basePaths = make(map[string]string)
	r.files = models.NewFileSet()
	return nil
}

// SetBasePath normalizes and stores the base path for a folder root and
// returns the stored value
func (r *Registry) SetBasePath(rootName, raw string) string {
	p := NormalizeBasePath(raw)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.basePaths[rootName] = p
	return p
}

// BasePath returns the stored base path for a folder root
func (r *Registry) BasePath(rootName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.basePaths[rootName]
	return p, ok && p != ""
}

// Folders returns a snapshot of the selected folders, in selection order,
// with their current base paths filled in
func (r *Registry) Folders() []models.SelectedFolder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.SelectedFolder, 0, len(r.folders))
	for _, f := range r.folders {
		snap := *f
		snap.BasePath = r.basePaths[f.RootName]
		out = append(out, snap)
	}
	return out
}

// Folder returns the live folder at index i
func (r *Registry) Folder(i int) (*models.SelectedFolder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.folders) {
		return nil, false
	}
	return r.folders[i], true
}

// Files returns a snapshot of the aggregate file set
func (r *Registry) Files() *models.FileSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.files.Clone()
}

// Len returns the number of selected folders
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.folders)
}

// Status summarizes the selection for the status line
func (r *Registry) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.folders) == 0 {
		return "Ready. Select a folder to begin."
	}
	return fmt.Sprintf("Ready. %d file(s) across %d folder(s) ready for search.", r.files.Len(), len(r.folders))
}

// RootOf returns the folder root segment of a relative path
func RootOf(relPath string) string {
	return rootSegment(relPath)
}

func rootSegment(relPath string) string {
	if idx := strings.IndexAny(relPath, `/\`); idx >= 0 {
		return relPath[:idx]
	}
	return relPath
}
