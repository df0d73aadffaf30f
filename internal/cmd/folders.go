package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/spf13/afero"
)

// folderArg is a folder given on the command line as path or path=base
type folderArg struct {
	Path     string
	BasePath string
}

func parseFolderArgs(args []string) ([]folderArg, error) {
	out := make([]folderArg, 0, len(args))
	for _, a := range args {
		path, base, _ := strings.Cut(a, "=")
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("invalid folder argument %q", a)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		out = append(out, folderArg{Path: abs, BasePath: base})
	}
	return out, nil
}

// addFolders registers every folder argument. A folder without an explicit
// base path defaults to its own absolute path, which is right whenever the
// server runs on this machine. File arguments are grouped into a single
// selection named models.FallbackRootName.
func addFolders(ctx context.Context, fs afero.Fs, reg *registry.Registry, folders []folderArg, fallback, defaultBase bool) error {
	var picked []folderArg
	for _, f := range folders {
		if isFile(fs, f.Path) {
			picked = append(picked, f)
			continue
		}

		folder, err := reg.AddPath(ctx, fs, f.Path, fallback)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", f.Path, err)
		}

		base := f.BasePath
		if base == "" && defaultBase {
			base = f.Path
		}
		if base != "" {
			reg.SetBasePath(folder.RootName, base)
		}
	}

	if len(picked) > 0 {
		return addPickedFiles(ctx, fs, reg, picked, defaultBase)
	}
	return nil
}

// addPickedFiles registers loose files. The group shares one base path: the
// first explicit one, or the files' common parent folder.
func addPickedFiles(ctx context.Context, fs afero.Fs, reg *registry.Registry, picked []folderArg, defaultBase bool) error {
	paths := make([]string, 0, len(picked))
	base := ""
	parent := filepath.Dir(picked[0].Path)
	for _, f := range picked {
		paths = append(paths, f.Path)
		if base == "" {
			base = f.BasePath
		}
		if filepath.Dir(f.Path) != parent {
			parent = ""
		}
	}

	folder, err := reg.AddFiles(ctx, fs, paths...)
	if err != nil {
		return fmt.Errorf("failed to add %d file(s): %w", len(paths), err)
	}

	if base == "" && defaultBase {
		base = parent
	}
	if base != "" {
		reg.SetBasePath(folder.RootName, base)
	}
	return nil
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
