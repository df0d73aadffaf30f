// Package search validates a query against the current selection and submits
// it to the server.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cheerioskun/textfinder/internal/client"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/utils"
)

// MinBasePathLen is the shortest base path accepted before a search
const MinBasePathLen = 3

var (
	// ErrEmptyQuery is returned for a blank search term
	ErrEmptyQuery = errors.New("please enter a search term")

	// ErrNoFiles is returned when nothing has been collected yet
	ErrNoFiles = errors.New("please select at least one folder with supported files")
)

// Selection is the read side of the folder registry
type Selection interface {
	Folders() []models.SelectedFolder
	Files() *models.FileSet
}

// Uploader sends a search upload to the server
type Uploader interface {
	SearchUpload(ctx context.Context, query string, files *models.FileSet) (*client.SearchResponse, error)
}

// Result is a completed search
type Result struct {
	Query   string
	Count   int
	Folders int
	Matches []models.MatchRecord
}

// Status is the status-line summary of the result
func (r *Result) Status() string {
	return fmt.Sprintf("Found %d match(es) in %d folder(s).", r.Count, r.Folders)
}

// Submitter runs searches for one selection
type Submitter struct {
	selection Selection
	uploader  Uploader
}

// NewSubmitter creates a Submitter
func NewSubmitter(selection Selection, uploader Uploader) *Submitter {
	return &Submitter{selection: selection, uploader: uploader}
}

// Validate checks the query and selection without touching the network.
// A folder with a missing or short base path yields *models.MissingBasePathError.
func (s *Submitter) Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	if s.selection.Files().IsEmpty() {
		return ErrNoFiles
	}
	for _, f := range s.selection.Folders() {
		if len(strings.TrimSpace(f.BasePath)) < MinBasePathLen {
			return &models.MissingBasePathError{Folder: f.RootName}
		}
	}
	return nil
}

// Submit validates and then uploads the selection with the query
func (s *Submitter) Submit(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if err := s.Validate(query); err != nil {
		return nil, err
	}

	files := s.selection.Files()
	folders := len(s.selection.Folders())

	utils.Info("Searching %d file(s) across %d folder(s) for %q", files.Len(), folders, query)

	resp, err := s.uploader.SearchUpload(ctx, query, files)
	if err != nil {
		utils.Error("Search failed: %v", err)
		return nil, err
	}

	count := resp.Count
	if count == 0 && len(resp.Matches) > 0 {
		count = len(resp.Matches)
	}

	return &Result{
		Query:   query,
		Count:   count,
		Folders: folders,
		Matches: resp.Matches,
	}, nil
}

// FailureStatus is the status line for a failed search. Server messages and
// transport errors pass through verbatim.
func FailureStatus(err error) string {
	return "Search failed: " + err.Error()
}
