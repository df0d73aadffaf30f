package messages

import (
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/search"
)

// PickMode says whether a picked folder replaces the selection or joins it
type PickMode int

const (
	PickFresh PickMode = iota // Replace every selected folder
	PickAdd                   // Append to the current selection
)

// FolderRequestedMsg is sent when the user confirms a path in the picker
type FolderRequestedMsg struct {
	Path string
	Mode PickMode
}

// SelectionCanceledMsg is sent when the picker is dismissed
type SelectionCanceledMsg struct{}

// FoldersChangedMsg is sent after any registry mutation has landed
type FoldersChangedMsg struct {
	Folders []models.SelectedFolder
	Files   *models.FileSet
	Status  string // Status line text for the new selection
	Err     error  // Set when the mutation failed; the selection is unchanged
}

// RemoveFolderMsg asks the app to drop the folder at Index
type RemoveFolderMsg struct {
	Index int
}

// BasePathChangedMsg is sent when a folder's base path input is edited
type BasePathChangedMsg struct {
	RootName string
	Value    string
}

// FocusFolderMsg moves focus to the base path input of RootName
type FocusFolderMsg struct {
	RootName string
}

// SearchCompletedMsg carries the outcome of a search upload
type SearchCompletedMsg struct {
	Result *search.Result
	Err    error
}

// RowActionMsg asks the app to run an action on a result row
type RowActionMsg struct {
	Row        results.Row
	OpenFolder bool // false opens the file in its viewer
}

// ActionCompletedMsg carries the outcome of a row action
type ActionCompletedMsg struct {
	Status string
	Err    error
}
