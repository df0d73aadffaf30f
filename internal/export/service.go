package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/spf13/afero"
)

// Service copies the files behind search matches out of the selection,
// keeping their root/relative layout
type Service struct {
	fs afero.Fs
}

// NewService creates a new export service writing to fs
func NewService(fs afero.Fs) *Service {
	return &Service{
		fs: fs,
	}
}

// Options contains configuration for export operations
type Options struct {
	DestinationPath string
	Overwrite       bool
}

// Summary describes an export, planned or done
type Summary struct {
	FileCount       int
	TotalSize       int64
	DestinationPath string
	Missing         []string // Matched names no longer in the selection
}

// Matched returns the distinct collected files behind rows, in row order,
// and the names that could not be found
func Matched(files *models.FileSet, rows []results.Row) ([]models.CollectedFile, []string) {
	seen := make(map[string]bool, len(rows))
	var matched []models.CollectedFile
	var missing []string

	for _, row := range rows {
		name := row.FileName()
		if seen[name] {
			continue
		}
		seen[name] = true

		file, ok := files.Get(name)
		if !ok || file.Handle == nil {
			missing = append(missing, name)
			continue
		}
		matched = append(matched, file)
	}
	return matched, missing
}

// Plan calculates what would be exported without writing anything
func (s *Service) Plan(files *models.FileSet, rows []results.Row, destPath string) *Summary {
	matched, missing := Matched(files, rows)
	summary := &Summary{DestinationPath: destPath, Missing: missing}
	for _, f := range matched {
		summary.FileCount++
		summary.TotalSize += f.Size
	}
	return summary
}

// ExportMatches copies every matched file below opts.DestinationPath
func (s *Service) ExportMatches(ctx context.Context, files *models.FileSet, rows []results.Row, opts Options) (*Summary, error) {
	if err := ValidateExportPath(s.fs, opts.DestinationPath); err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(opts.DestinationPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	matched, missing := Matched(files, rows)
	summary := &Summary{DestinationPath: opts.DestinationPath, Missing: missing}

	for _, file := range matched {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.exportFile(file, opts); err != nil {
			return summary, fmt.Errorf("failed to export file %s: %w", file.RelativePath, err)
		}
		summary.FileCount++
		summary.TotalSize += file.Size
	}

	for _, name := range missing {
		utils.Warning("Matched file %s is not in the selection, not exported", name)
	}
	utils.Info("Exported %d file(s) to %s", summary.FileCount, opts.DestinationPath)
	return summary, nil
}

// destination maps a relative path below root, refusing paths that climb out
func destination(root, relativePath string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(relativePath, "\\", "/")))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid relative path %q", relativePath)
	}
	return filepath.Join(root, rel), nil
}

// exportFile copies a single file preserving its relative path
func (s *Service) exportFile(file models.CollectedFile, opts Options) error {
	destPath, err := destination(opts.DestinationPath, file.RelativePath)
	if err != nil {
		return err
	}

	destDir := filepath.Dir(destPath)
	if err := s.fs.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	if !opts.Overwrite {
		if exists, err := afero.Exists(s.fs, destPath); err != nil {
			return fmt.Errorf("failed to check if destination exists: %w", err)
		} else if exists {
			return fmt.Errorf("destination file exists and overwrite is disabled: %s", destPath)
		}
	}

	return s.copyFile(file, destPath)
}

func (s *Service) copyFile(file models.CollectedFile, destPath string) error {
	src, err := file.Handle.Open()
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := s.fs.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	return nil
}

// ValidateExportPath performs basic validation on the export path
func ValidateExportPath(fs afero.Fs, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("export path cannot be empty")
	}

	if exists, _ := afero.Exists(fs, path); exists {
		if isDir, _ := afero.IsDir(fs, path); !isDir {
			return fmt.Errorf("export path is not a directory: %s", path)
		}
		return nil
	}

	parentDir := filepath.Dir(filepath.Clean(path))
	if ok, _ := afero.DirExists(fs, parentDir); !ok {
		return fmt.Errorf("parent directory does not exist: %s", parentDir)
	}
	return nil
}
