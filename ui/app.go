package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/textfinder/internal/export"
	"github.com/cheerioskun/textfinder/internal/messages"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/cheerioskun/textfinder/internal/search"
	"github.com/cheerioskun/textfinder/internal/utils"
	uiexport "github.com/cheerioskun/textfinder/ui/export"
	"github.com/cheerioskun/textfinder/ui/folders"
	"github.com/cheerioskun/textfinder/ui/picker"
	uiresults "github.com/cheerioskun/textfinder/ui/results"
	"github.com/spf13/afero"
)

// FocusedPanel represents which panel is currently focused
type FocusedPanel int

const (
	FoldersPanel FocusedPanel = iota
	QueryPanel
	ResultsPanel
)

// Options wires the application model to its collaborators
type Options struct {
	Fs        afero.Fs
	Registry  *registry.Registry
	Submitter *search.Submitter
	Actions   *results.Actions
	Server    string // Shown in the header
	Fallback  bool   // Read picked folders as flat file lists
	Session   string // Session file saved after every change, empty disables
	Query     string // Initial query
}

// AppModel represents the main application model
type AppModel struct {
	// Core state
	fs        afero.Fs
	registry  *registry.Registry
	submitter *search.Submitter
	actions   *results.Actions
	ctx       context.Context
	cancel    context.CancelFunc

	// Components
	folders  *folders.Model
	query    textinput.Model
	results  *uiresults.Model
	picker   *picker.Model
	exporter *uiexport.Model

	// UI state
	focused  FocusedPanel
	width    int
	height   int
	server   string
	fallback bool
	session  string

	// Status
	status    string
	statusErr bool
	busy      bool
	lastQuery string
	quitting  bool
}

// NewAppModel creates a new application model
func NewAppModel(opts Options) *AppModel {
	ctx, cancel := context.WithCancel(context.Background())

	q := textinput.New()
	q.Placeholder = "Search term..."
	q.CharLimit = 512
	q.SetValue(opts.Query)

	m := &AppModel{
		fs:        opts.Fs,
		registry:  opts.Registry,
		submitter: opts.Submitter,
		actions:   opts.Actions,
		ctx:       ctx,
		cancel:    cancel,
		folders:   folders.NewModel(),
		query:     q,
		results:   uiresults.NewModel(),
		picker:    picker.NewModel(opts.Fallback),
		exporter:  uiexport.NewModel(export.NewService(opts.Fs)),
		focused:   FoldersPanel,
		width:     80,
		height:    24,
		server:    opts.Server,
		fallback:  opts.Fallback,
		session:   opts.Session,
		status:    opts.Registry.Status(),
	}
	m.folders.SetFolders(opts.Registry.Folders(), opts.Registry.Files())
	m.applyFocus()
	return m
}

// Init implements tea.Model
func (m *AppModel) Init() tea.Cmd {
	if m.registry.Len() == 0 {
		return m.picker.Show(messages.PickFresh)
	}
	return nil
}

// Update implements tea.Model
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case messages.FolderRequestedMsg:
		m.setStatus(fmt.Sprintf("Processing folder %s...", msg.Path), false)
		return m, m.addFolder(msg.Path, msg.Mode)

	case messages.SelectionCanceledMsg:
		m.setStatus("Folder selection canceled.", false)
		return m, nil

	case messages.FoldersChangedMsg:
		m.picker, cmd = m.picker.Update(msg)
		if msg.Err != nil {
			m.setStatus("Error: "+msg.Err.Error(), true)
			return m, cmd
		}
		m.folders.SetFolders(msg.Folders, msg.Files)
		m.setStatus(msg.Status, false)
		m.saveSession()

		// Prompt for the base path of a folder that has none yet
		for _, f := range msg.Folders {
			if f.BasePath == "" {
				m.focus(FoldersPanel)
				return m, tea.Batch(cmd, m.folders.FocusRoot(f.RootName))
			}
		}
		return m, cmd

	case messages.RemoveFolderMsg:
		return m, m.removeFolder(msg.Index)

	case messages.BasePathChangedMsg:
		m.registry.SetBasePath(msg.RootName, msg.Value)
		m.folders.SetFolders(m.registry.Folders(), m.registry.Files())
		m.saveSession()
		return m, nil

	case messages.FocusFolderMsg:
		m.focus(FoldersPanel)
		return m, m.folders.FocusRoot(msg.RootName)

	case messages.SearchCompletedMsg:
		m.busy = false
		if msg.Err != nil {
			return m, m.handleError(msg.Err, true)
		}
		m.lastQuery = msg.Result.Query
		m.results.SetRows(results.BuildRows(msg.Result.Matches))
		m.setStatus(msg.Result.Status(), false)
		if len(msg.Result.Matches) > 0 {
			m.focus(ResultsPanel)
		}
		return m, nil

	case messages.RowActionMsg:
		m.setStatus("Preparing file...", false)
		return m, m.runAction(msg.Row, msg.OpenFolder)

	case messages.ActionCompletedMsg:
		if msg.Err != nil {
			return m, m.handleError(msg.Err, false)
		}
		m.setStatus(msg.Status, false)
		return m, nil

	case uiexport.CompletedMsg:
		if msg.Err != nil {
			m.setStatus("Error: "+msg.Err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Exported %d file(s) to %s", msg.Summary.FileCount, msg.Summary.DestinationPath), false)
		return m, nil

	case uiexport.CancelledMsg:
		m.setStatus("Export canceled.", false)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.picker.IsVisible() {
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		if m.exporter.IsVisible() {
			m.exporter, cmd = m.exporter.Update(msg)
			return m, cmd
		}

		typing := m.focused == QueryPanel || m.folders.IsEditing()

		switch msg.String() {
		case "tab":
			if !m.folders.IsEditing() {
				m.nextPanel()
				return m, nil
			}
		case "shift+tab":
			if !m.folders.IsEditing() {
				m.prevPanel()
				return m, nil
			}
		case "q":
			if !typing {
				return m.quit()
			}
		case "p":
			if !typing {
				return m, m.picker.Show(messages.PickFresh)
			}
		case "a":
			if !typing {
				return m, m.picker.Show(messages.PickAdd)
			}
		case "/":
			if !typing {
				m.focus(QueryPanel)
				return m, nil
			}
		case "x":
			if m.focused == ResultsPanel {
				return m, m.showExport()
			}
		}

		switch m.focused {
		case FoldersPanel:
			m.folders, cmd = m.folders.Update(msg)
		case QueryPanel:
			if msg.String() == "enter" {
				return m, m.submit()
			}
			m.query, cmd = m.query.Update(msg)
		case ResultsPanel:
			m.results, cmd = m.results.Update(msg)
		}
		return m, cmd
	}

	if m.picker.IsVisible() {
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	if m.exporter.IsVisible() {
		m.exporter, cmd = m.exporter.Update(msg)
		return m, cmd
	}
	if m.focused == QueryPanel {
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// handleError puts an error on the status line. A missing base path moves
// focus to that folder's input.
func (m *AppModel) handleError(err error, searching bool) tea.Cmd {
	var missing *models.MissingBasePathError
	switch {
	case errors.As(err, &missing):
		m.setStatus("Error: "+err.Error(), true)
		m.focus(FoldersPanel)
		return m.folders.FocusRoot(missing.Folder)
	case errors.Is(err, search.ErrEmptyQuery):
		m.setStatus("Error: "+err.Error(), true)
		m.focus(QueryPanel)
		return nil
	case errors.Is(err, search.ErrNoFiles):
		m.setStatus("Error: "+err.Error(), true)
		return nil
	case searching:
		m.setStatus(search.FailureStatus(err), true)
		return nil
	default:
		m.setStatus("Error: "+err.Error(), true)
		return nil
	}
}

func (m *AppModel) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
	if isErr {
		utils.Warning("%s", status)
	}
}

func (m *AppModel) saveSession() {
	if m.session == "" {
		return
	}
	if err := models.SaveSession(m.fs, m.session, m.registry.Snapshot(m.query.Value())); err != nil {
		utils.Error("Failed to save session: %v", err)
	}
}

// Commands

func (m *AppModel) addFolder(path string, mode messages.PickMode) tea.Cmd {
	ctx, reg, fs, fallback := m.ctx, m.registry, m.fs, m.fallback
	return func() tea.Msg {
		var err error
		if mode == messages.PickFresh {
			_, err = reg.ReplacePath(ctx, fs, path, fallback)
		} else {
			_, err = reg.AddPath(ctx, fs, path, fallback)
		}
		return foldersChanged(reg, err)
	}
}

func (m *AppModel) removeFolder(index int) tea.Cmd {
	ctx, reg := m.ctx, m.registry
	return func() tea.Msg {
		folder, ok := reg.Folder(index)
		if !ok {
			return foldersChanged(reg, registry.ErrUnknownFolder)
		}
		return foldersChanged(reg, reg.Remove(ctx, folder))
	}
}

func foldersChanged(reg *registry.Registry, err error) tea.Msg {
	return messages.FoldersChangedMsg{
		Folders: reg.Folders(),
		Files:   reg.Files(),
		Status:  reg.Status(),
		Err:     err,
	}
}

func (m *AppModel) submit() tea.Cmd {
	if m.busy {
		return nil
	}
	query := m.query.Value()
	if err := m.submitter.Validate(query); err != nil {
		return m.handleError(err, true)
	}

	m.busy = true
	m.setStatus(fmt.Sprintf("Searching for %q...", strings.TrimSpace(query)), false)

	ctx, submitter := m.ctx, m.submitter
	return func() tea.Msg {
		res, err := submitter.Submit(ctx, query)
		return messages.SearchCompletedMsg{Result: res, Err: err}
	}
}

func (m *AppModel) showExport() tea.Cmd {
	rows := m.results.Rows()
	if len(rows) == 0 {
		m.setStatus("Error: no matches to export", true)
		return nil
	}
	return m.exporter.Show(m.registry.Files(), rows)
}

func (m *AppModel) runAction(row results.Row, openFolder bool) tea.Cmd {
	ctx, actions, query := m.ctx, m.actions, m.lastQuery
	return func() tea.Msg {
		if openFolder {
			msg, err := actions.OpenFolder(ctx, row)
			if err != nil {
				return messages.ActionCompletedMsg{Err: err}
			}
			if msg == "" {
				msg = "Opened folder for " + row.Path
			}
			return messages.ActionCompletedMsg{Status: msg}
		}

		target, err := actions.View(ctx, row, query)
		if err != nil {
			return messages.ActionCompletedMsg{Err: err}
		}
		return messages.ActionCompletedMsg{Status: "Opened " + target}
	}
}

// View implements tea.Model
func (m *AppModel) View() string {
	if m.quitting {
		return "Thanks for using TextFinder!\n"
	}

	if m.picker.IsVisible() {
		return m.picker.View()
	}
	if m.exporter.IsVisible() {
		return m.exporter.View()
	}

	return m.renderLayout()
}

// renderLayout creates the main application layout
func (m *AppModel) renderLayout() string {
	header := m.renderHeader()
	leftWidth, rightWidth, contentHeight := m.dimensions()

	left := m.panelStyle(FoldersPanel, leftWidth, contentHeight).Render(m.folders.View())

	queryBox := m.panelStyle(QueryPanel, rightWidth, 3).Render(m.query.View())
	resultsBox := m.panelStyle(ResultsPanel, rightWidth, contentHeight-3).Render(m.results.View())
	right := lipgloss.JoinVertical(lipgloss.Left, queryBox, resultsBox)

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, m.renderStatus())
}

func (m *AppModel) dimensions() (left, right, content int) {
	headerHeight := 3
	statusHeight := 3
	content = m.height - headerHeight - statusHeight
	if content < 8 {
		content = 8
	}
	left = m.width / 3
	right = m.width - left
	return left, right, content
}

// layout pushes the current size down to the components
func (m *AppModel) layout() {
	left, right, content := m.dimensions()
	m.folders.SetSize(left-4, content-2)
	m.query.Width = right - 8
	m.results.SetSize(right-4, content-5)
	m.picker.SetSize(m.width, m.height)
	m.exporter.SetSize(m.width, m.height)
}

// renderHeader creates the application header
func (m *AppModel) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("TextFinder - Folder Text Search")

	server := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(fmt.Sprintf("Server: %s", m.server))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("Tab: Navigate | /: Search | p: Pick | a: Add | x: Export | q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, server, help)
}

// renderStatus renders the status line
func (m *AppModel) renderStatus() string {
	color := lipgloss.Color("252")
	if m.statusErr {
		color = lipgloss.Color("196")
	}

	files := m.registry.Files()
	parts := []string{
		fmt.Sprintf("Folders: %d", m.registry.Len()),
		fmt.Sprintf("Files: %d (%s)", files.Len(), formatBytes(files.TotalSize())),
		lipgloss.NewStyle().Foreground(color).Render(m.status),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width-2).
		Padding(0, 1).
		Render(strings.Join(parts, " | "))
}

// Helper methods

func (m *AppModel) panelStyle(panel FocusedPanel, width, height int) lipgloss.Style {
	borderColor := lipgloss.Color("240")
	if panel == m.focused {
		borderColor = lipgloss.Color("205")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width-2).
		Height(height-2).
		Padding(0, 1)
}

func (m *AppModel) focus(panel FocusedPanel) {
	m.focused = panel
	m.applyFocus()
}

func (m *AppModel) applyFocus() {
	m.folders.Blur()
	m.query.Blur()
	m.results.Blur()

	switch m.focused {
	case FoldersPanel:
		m.folders.Focus()
	case QueryPanel:
		m.query.Focus()
	case ResultsPanel:
		m.results.Focus()
	}
}

func (m *AppModel) nextPanel() {
	m.focus((m.focused + 1) % 3)
}

func (m *AppModel) prevPanel() {
	m.focus((m.focused + 2) % 3)
}

// Status returns the status line text
func (m *AppModel) Status() string {
	return m.status
}

// Focused returns the focused panel
func (m *AppModel) Focused() FocusedPanel {
	return m.focused
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
