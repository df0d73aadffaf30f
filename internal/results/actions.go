package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/cheerioskun/textfinder/internal/utils"
)

// ErrFileNotFound is returned when a match names a file that is no longer in
// the collected set
var ErrFileNotFound = errors.New("file not found in the current selection")

// Selection is what the actions need from the folder registry
type Selection interface {
	Files() *models.FileSet
	BasePath(rootName string) (string, bool)
}

// Server resolves file identifiers and builds viewer URLs
type Server interface {
	UploadForView(ctx context.Context, name string, file source.FileHandle, originalPath string) (string, error)
	OpenFolder(ctx context.Context, fileID string) (string, error)
	FileURL(fileID, page string) string
	TextViewURL(fileID, query string) string
	CodeViewURL(fileID, query string) string
}

// Opener shows a URL to the user, normally in the system browser
type Opener interface {
	Open(target string) error
}

// Actions runs the per-row view and open-folder actions
type Actions struct {
	selection Selection
	server    Server
	opener    Opener
}

// NewActions creates the row actions
func NewActions(selection Selection, server Server, opener Opener) *Actions {
	return &Actions{selection: selection, server: server, opener: opener}
}

// Resolved is a file that the server has issued an identifier for
type Resolved struct {
	FileID       string
	AbsolutePath string
}

// Locate finds the row's file and computes its absolute path. A root folder
// without a base path yields *models.MissingBasePathError.
func (a *Actions) Locate(row Row) (source.FileHandle, string, error) {
	name := row.FileName()
	file, ok := a.selection.Files().Get(name)
	if !ok || file.Handle == nil {
		return nil, "", fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}

	root := RootOf(file.RelativePath)
	base, ok := a.selection.BasePath(root)
	if !ok {
		return nil, "", &models.MissingBasePathError{Folder: root}
	}

	return file.Handle, ResolveAbsolutePath(file.RelativePath, base), nil
}

// Resolve uploads the row's file with its absolute path and returns the
// server-issued identifier
func (a *Actions) Resolve(ctx context.Context, row Row) (*Resolved, error) {
	handle, abs, err := a.Locate(row)
	if err != nil {
		return nil, err
	}

	id, err := a.server.UploadForView(ctx, row.FileName(), handle, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare file for viewing: %w", err)
	}

	utils.Debug("Resolved %s to file id %s", abs, id)
	return &Resolved{FileID: id, AbsolutePath: abs}, nil
}

// ViewURL routes an identifier to the viewer for the row's file type
func (a *Actions) ViewURL(row Row, fileID, query string) string {
	switch row.Kind() {
	case ViewPDF:
		page := ""
		if row.Match.Page.IsSet() {
			page = row.Match.Page.String()
		}
		return a.server.FileURL(fileID, page)
	case ViewText:
		return a.server.TextViewURL(fileID, query)
	default:
		return a.server.CodeViewURL(fileID, query)
	}
}

// View resolves the row's file and opens it in the matching viewer. The
// opened URL is returned.
func (a *Actions) View(ctx context.Context, row Row, query string) (string, error) {
	resolved, err := a.Resolve(ctx, row)
	if err != nil {
		return "", err
	}

	target := a.ViewURL(row, resolved.FileID, query)
	if a.opener != nil {
		if err := a.opener.Open(target); err != nil {
			return target, fmt.Errorf("failed to open viewer: %w", err)
		}
	}

	utils.Info("Opened %s in %s viewer", resolved.AbsolutePath, row.Kind())
	return target, nil
}

// OpenFolder resolves the row's file and asks the server to reveal its
// containing folder. Server failures are returned verbatim.
func (a *Actions) OpenFolder(ctx context.Context, row Row) (string, error) {
	resolved, err := a.Resolve(ctx, row)
	if err != nil {
		return "", err
	}

	msg, err := a.server.OpenFolder(ctx, resolved.FileID)
	if err != nil {
		return "", err
	}

	utils.Info("Open folder for %s: %s", resolved.AbsolutePath, msg)
	return msg, nil
}
