// Package collector walks selected folders and gathers the files eligible
// for a search upload.
package collector

import (
	"context"
	"fmt"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/cheerioskun/textfinder/internal/utils"
)

// Collector turns folder handles and fallback file lists into FileSets
type Collector struct {
	filter *Filter
}

// NewCollector creates a Collector using the given filter, or the default
// filter when nil
func NewCollector(filter *Filter) *Collector {
	if filter == nil {
		filter = NewFilter()
	}
	return &Collector{filter: filter}
}

// Filter returns the filter in use
func (c *Collector) Filter() *Filter {
	return c.filter
}

// CollectDirectory walks dir depth-first. prefix is the root-relative path of
// dir itself, normally the folder's name.
func (c *Collector) CollectDirectory(ctx context.Context, dir source.DirectoryHandle, prefix string) (*models.FileSet, error) {
	entries, err := dir.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", prefix, err)
	}

	out := models.NewFileSet()

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := prefix + "/" + entry.Name()

		if entry.IsDir() {
			sub := entry.Directory()
			if sub == nil {
				continue
			}
			child, err := c.CollectDirectory(ctx, sub, path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				utils.Warning("Skipping folder %s: %v", path, err)
				continue
			}
			out.Merge(child)
			continue
		}

		if !c.filter.AllowName(entry.Name()) {
			continue
		}

		file, err := entry.GetFile()
		if err != nil {
			utils.Warning("Skipping file %s: could not read file content: %v", path, err)
			continue
		}

		if !c.filter.AllowSize(file.Size()) {
			utils.Debug("Skipping file %s: %d bytes exceeds limit", path, file.Size())
			continue
		}

		out.Put(models.CollectedFile{
			Name:         file.Name(),
			RelativePath: path,
			Size:         file.Size(),
			Handle:       file,
		})
	}

	return out, nil
}

// CollectFileList applies the filter to a flat fallback selection
func (c *Collector) CollectFileList(files []source.FileHandle) *models.FileSet {
	out := models.NewFileSet()

	for _, file := range files {
		if !c.filter.Allow(file.Name(), file.Size()) {
			continue
		}

		path := file.Name()
		if rp, ok := file.(source.RelativePather); ok && rp.RelativePath() != "" {
			path = rp.RelativePath()
		}

		out.Put(models.CollectedFile{
			Name:         file.Name(),
			RelativePath: path,
			Size:         file.Size(),
			Handle:       file,
		})
	}

	return out
}
