package models

import "fmt"

// MissingBasePathError reports a folder root whose absolute base path has not
// been entered. Folder names the input that needs attention.
type MissingBasePathError struct {
	Folder string
}

func (e *MissingBasePathError) Error() string {
	return fmt.Sprintf("please enter the absolute path for the folder: %s", e.Folder)
}
