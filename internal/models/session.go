package models

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// SessionVersion is written into every saved session file
const SessionVersion = "1"

// SessionFile is the on-disk form of a folder selection, so base paths do not
// have to be typed again on the next run.
type SessionFile struct {
	Version string          `yaml:"version"`
	SavedAt time.Time       `yaml:"saved_at"`
	Query   string          `yaml:"query,omitempty"`
	Folders []SessionFolder `yaml:"folders"`
}

// SessionFolder is one saved folder root
type SessionFolder struct {
	RootName string `yaml:"root_name"`
	Path     string `yaml:"path,omitempty"` // Local path the folder was opened from
	BasePath string `yaml:"base_path,omitempty"`
	Fallback bool   `yaml:"fallback,omitempty"`
}

// NewSessionFile snapshots the given folders
func NewSessionFile(folders []SelectedFolder, query string) *SessionFile {
	s := &SessionFile{
		Version: SessionVersion,
		SavedAt: time.Now().UTC(),
		Query:   query,
		Folders: make([]SessionFolder, 0, len(folders)),
	}
	for i := range folders {
		f := &folders[i]
		s.Folders = append(s.Folders, SessionFolder{
			RootName: f.RootName,
			Path:     f.Location(),
			BasePath: f.BasePath,
			Fallback: f.IsFallback(),
		})
	}
	return s
}

// BasePaths returns the saved root name -> base path entries
func (s *SessionFile) BasePaths() map[string]string {
	paths := make(map[string]string, len(s.Folders))
	for _, f := range s.Folders {
		if f.BasePath != "" {
			paths[f.RootName] = f.BasePath
		}
	}
	return paths
}

// SaveSession writes the session as YAML
func SaveSession(fs afero.Fs, filename string, s *SessionFile) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := afero.WriteFile(fs, filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session written by SaveSession
func LoadSession(fs afero.Fs, filename string) (*SessionFile, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s SessionFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", filename, err)
	}
	return &s, nil
}
