package registry

import (
	"context"
	"fmt"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/spf13/afero"
)

// AddPath opens a local folder and registers it, either as a directory
// handle or, in fallback mode, as the flat list of files beneath it
func (r *Registry) AddPath(ctx context.Context, fs afero.Fs, path string, fallback bool) (*models.SelectedFolder, error) {
	if fallback {
		files, err := source.ListFiles(fs, path)
		if err != nil {
			return nil, err
		}
		return r.addFallback(ctx, files, path)
	}

	dir, err := source.OpenDirectory(fs, path)
	if err != nil {
		return nil, err
	}
	return r.Add(ctx, dir)
}

// AddFiles registers individually picked files as one fallback selection
// rooted at FallbackRootName
func (r *Registry) AddFiles(ctx context.Context, fs afero.Fs, paths ...string) (*models.SelectedFolder, error) {
	files := source.FromPaths(fs, models.FallbackRootName, paths...)
	if len(files) == 0 {
		return nil, ErrEmptySelection
	}
	return r.addFallback(ctx, files, "")
}

// ReplacePath clears the selection and registers path as the only folder.
// The current selection is kept when path cannot be opened or is a drive root.
func (r *Registry) ReplacePath(ctx context.Context, fs afero.Fs, path string, fallback bool) (*models.SelectedFolder, error) {
	if !fallback {
		dir, err := source.OpenDirectory(fs, path)
		if err != nil {
			return nil, err
		}
		if IsDriveRoot(dir.Name()) {
			return nil, ErrDriveRoot
		}
	} else if ok, err := afero.DirExists(fs, path); err != nil || !ok {
		return nil, fmt.Errorf("path %s is not a directory", path)
	}

	if err := r.Reset(ctx); err != nil {
		return nil, err
	}
	return r.AddPath(ctx, fs, path, fallback)
}

// Restore re-adds the folders of a saved session and their base paths.
// Folders that can no longer be opened are skipped with a warning.
func (r *Registry) Restore(ctx context.Context, fs afero.Fs, s *models.SessionFile) (int, error) {
	restored := 0
	for _, f := range s.Folders {
		if f.Path == "" {
			utils.Warning("Session folder %q has no local path, skipping", f.RootName)
			continue
		}

		folder, err := r.AddPath(ctx, fs, f.Path, f.Fallback)
		if err != nil {
			if ctx.Err() != nil {
				return restored, ctx.Err()
			}
			utils.Warning("Failed to restore folder %q from %s: %v", f.RootName, f.Path, err)
			continue
		}

		if f.BasePath != "" {
			r.SetBasePath(folder.RootName, f.BasePath)
		}
		restored++
	}
	return restored, nil
}

// Snapshot captures the selection for saving
func (r *Registry) Snapshot(query string) *models.SessionFile {
	return models.NewSessionFile(r.Folders(), query)
}
