package ui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheerioskun/textfinder/internal/client"
	"github.com/cheerioskun/textfinder/internal/messages"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/search"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServer struct {
	matches []models.MatchRecord
	uploads []string
}

func (s *stubServer) SearchUpload(_ context.Context, _ string, _ *models.FileSet) (*client.SearchResponse, error) {
	return &client.SearchResponse{Status: "ok", Count: len(s.matches), Matches: s.matches}, nil
}

func (s *stubServer) UploadForView(_ context.Context, _ string, _ source.FileHandle, originalPath string) (string, error) {
	s.uploads = append(s.uploads, originalPath)
	return "id1", nil
}

func (s *stubServer) OpenFolder(context.Context, string) (string, error) {
	return "Opened folder", nil
}

func (s *stubServer) FileURL(id, page string) string  { return "pdf:" + id + "#" + page }
func (s *stubServer) TextViewURL(id, q string) string { return "text:" + id + "?" + q }
func (s *stubServer) CodeViewURL(id, q string) string { return "code:" + id + "?" + q }

type nopOpener struct{}

func (nopOpener) Open(string) error { return nil }

func newTestApp(t *testing.T, srv *stubServer) (*AppModel, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/data/Invoices/2024/jan.pdf", "/data/Invoices/readme.md", "/data/Reports/q1.xlsx"} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0644))
	}

	reg := registry.New(nil)
	app := NewAppModel(Options{
		Fs:        fs,
		Registry:  reg,
		Submitter: search.NewSubmitter(reg, srv),
		Actions:   results.NewActions(reg, srv, nopOpener{}),
		Server:    "http://test",
		Session:   "/session.yaml",
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, fs
}

// drive feeds msg to the app and keeps running returned commands until they
// stop producing messages
func drive(app *AppModel, msg tea.Msg) {
	for i := 0; msg != nil && i < 10; i++ {
		_, cmd := app.Update(msg)
		msg = nil
		if cmd != nil {
			msg = cmd()
		}
		if _, ok := msg.(tea.BatchMsg); ok {
			return
		}
	}
}

func TestApp_InitialStatus(t *testing.T) {
	app, _ := newTestApp(t, &stubServer{})
	assert.Equal(t, "Ready. Select a folder to begin.", app.Status())
}

func TestApp_SelectionCanceled(t *testing.T) {
	app, _ := newTestApp(t, &stubServer{})
	app.Update(messages.SelectionCanceledMsg{})
	assert.Equal(t, "Folder selection canceled.", app.Status())
}

func TestApp_AddFolderAndSaveSession(t *testing.T) {
	app, fs := newTestApp(t, &stubServer{})

	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})
	assert.Equal(t, "Ready. 2 file(s) across 1 folder(s) ready for search.", app.Status())
	assert.Equal(t, FoldersPanel, app.Focused())

	app.Update(messages.BasePathChangedMsg{RootName: "Invoices", Value: `D:\data\Invoices\`})
	base, ok := app.registry.BasePath("Invoices")
	require.True(t, ok)
	assert.Equal(t, "D:/data/Invoices", base)

	s, err := models.LoadSession(fs, "/session.yaml")
	require.NoError(t, err)
	require.Len(t, s.Folders, 1)
	assert.Equal(t, "D:/data/Invoices", s.Folders[0].BasePath)
	assert.Equal(t, "/data/Invoices", s.Folders[0].Path)
}

func TestApp_FreshPickReplaces(t *testing.T) {
	app, _ := newTestApp(t, &stubServer{})

	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})
	drive(app, messages.FolderRequestedMsg{Path: "/data/Reports", Mode: messages.PickAdd})
	assert.Equal(t, 2, app.registry.Len())

	drive(app, messages.FolderRequestedMsg{Path: "/data/Reports", Mode: messages.PickFresh})
	assert.Equal(t, 1, app.registry.Len())
	assert.Equal(t, "Ready. 1 file(s) across 1 folder(s) ready for search.", app.Status())
}

func TestApp_DuplicateFolderReported(t *testing.T) {
	app, _ := newTestApp(t, &stubServer{})

	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})
	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickAdd})

	assert.Contains(t, app.Status(), "Error: ")
	assert.Contains(t, app.Status(), "already been selected")
	assert.Equal(t, 1, app.registry.Len())
}

func TestApp_SearchNeedsBasePath(t *testing.T) {
	srv := &stubServer{}
	app, _ := newTestApp(t, srv)
	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})

	app.focus(QueryPanel)
	app.query.SetValue("total")
	drive(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Error: please enter the absolute path for the folder: Invoices", app.Status())
	assert.Equal(t, FoldersPanel, app.Focused())
	assert.True(t, app.folders.IsEditing())
}

func TestApp_SearchAndView(t *testing.T) {
	srv := &stubServer{matches: []models.MatchRecord{
		{File: "jan.pdf", Path: "Invoices/2024/jan.pdf", Page: "2", Preview: "**total**"},
	}}
	app, _ := newTestApp(t, srv)
	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})
	app.registry.SetBasePath("Invoices", "/srv/Invoices")

	app.focus(QueryPanel)
	app.query.SetValue("total")
	drive(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Found 1 match(es) in 1 folder(s).", app.Status())
	assert.Equal(t, ResultsPanel, app.Focused())

	drive(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Opened pdf:id1#2", app.Status())
	assert.Equal(t, []string{"/srv/Invoices/2024/jan.pdf"}, srv.uploads)

	drive(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	assert.Equal(t, "Opened folder", app.Status())
}

func TestApp_ExportMatches(t *testing.T) {
	srv := &stubServer{matches: []models.MatchRecord{
		{File: "jan.pdf", Path: "Invoices/2024/jan.pdf", Page: "1"},
		{File: "readme.md", Path: "Invoices/readme.md", Line: "3"},
	}}
	app, fs := newTestApp(t, srv)
	require.NoError(t, fs.MkdirAll("/exports", 0755))
	drive(app, messages.FolderRequestedMsg{Path: "/data/Invoices", Mode: messages.PickFresh})
	app.registry.SetBasePath("Invoices", "/srv/Invoices")

	app.focus(QueryPanel)
	app.query.SetValue("total")
	drive(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ResultsPanel, app.Focused())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.True(t, app.exporter.IsVisible())
	app.exporter.SetDestination("/exports/hits")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.False(t, app.exporter.IsVisible())
	assert.Equal(t, "Exported 2 file(s) to /exports/hits", app.Status())

	ok, err := afero.Exists(fs, "/exports/hits/Invoices/2024/jan.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.Exists(fs, "/exports/hits/Invoices/readme.md")
	require.NoError(t, err)
	assert.True(t, ok)
}
