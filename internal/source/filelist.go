package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/spf13/afero"
)

// ListFiles flattens every file below root into a fallback list, the way a
// multi-file folder input would. Each file carries "<root name>/<sub>/<name>"
// as its relative path.
func ListFiles(fs afero.Fs, root string) ([]FileHandle, error) {
	clean := filepath.Clean(root)

	info, err := fs.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to access path %s: %w", clean, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", clean)
	}

	rootName := filepath.Base(clean)
	var files []FileHandle

	err = afero.Walk(fs, clean, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == clean {
				return err
			}
			utils.Warning("Skipping %s: %v", path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(clean, path)
		if err != nil {
			rel = info.Name()
		}

		files = append(files, &File{
			fs:      fs,
			path:    path,
			size:    info.Size(),
			relPath: rootName + "/" + filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files under %s: %w", clean, err)
	}

	return files, nil
}

// FromPaths resolves individually picked files. They have no common folder,
// so each one gets "<root>/<name>" as its relative path. Paths that cannot be
// resolved are skipped with a warning.
func FromPaths(fs afero.Fs, root string, paths ...string) []FileHandle {
	files := make([]FileHandle, 0, len(paths))
	for _, p := range paths {
		clean := filepath.Clean(p)
		info, err := fs.Stat(clean)
		if err != nil {
			utils.Warning("Skipping file %s: %v", clean, err)
			continue
		}
		if info.IsDir() {
			utils.Warning("Skipping %s: is a directory", clean)
			continue
		}
		files = append(files, &File{
			fs:      fs,
			path:    clean,
			size:    info.Size(),
			relPath: root + "/" + info.Name(),
		})
	}
	return files
}
