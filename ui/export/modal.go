package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/textfinder/internal/export"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/results"
)

// DefaultDirName is the directory created in the working directory when no
// other destination is typed
const DefaultDirName = "textfinder_matches"

// Styling
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Align(lipgloss.Center)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Margin(1, 0)

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Margin(1, 0)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Align(lipgloss.Center).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Margin(1, 0)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true).
			Margin(1, 0)
)

// State represents the modal's current state
type State int

const (
	StateInput State = iota
	StateExporting
	StateSuccess
	StateError
)

// Model is the modal that copies the matched files to a directory
type Model struct {
	textInput textinput.Model

	state   State
	visible bool
	width   int
	height  int

	service   *export.Service
	files     *models.FileSet
	rows      []results.Row
	summary   *export.Summary
	overwrite bool

	errorMessage   string
	successMessage string
}

// CompletedMsg is sent when the modal closes after an export
type CompletedMsg struct {
	Summary *export.Summary
	Err     error
}

// CancelledMsg is sent when the modal is dismissed without exporting
type CancelledMsg struct{}

type exportDoneMsg struct {
	summary *export.Summary
	err     error
}

// NewModel creates a new export modal
func NewModel(service *export.Service) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter export destination..."
	ti.CharLimit = 256
	ti.Width = 50

	return &Model{
		textInput: ti,
		state:     StateInput,
		service:   service,
	}
}

// DefaultPath is the suggested destination below the working directory
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(cwd, DefaultDirName)
}

// Show displays the modal for the files behind rows
func (m *Model) Show(files *models.FileSet, rows []results.Row) tea.Cmd {
	m.visible = true
	m.state = StateInput
	m.files = files
	m.rows = rows
	m.overwrite = false
	m.errorMessage = ""
	m.successMessage = ""

	m.textInput.SetValue(DefaultPath())
	m.updateSummary()
	return m.textInput.Focus()
}

// Hide hides the modal
func (m *Model) Hide() {
	m.visible = false
	m.textInput.Blur()
	m.state = StateInput
}

// IsVisible returns true if the modal is visible
func (m *Model) IsVisible() bool {
	return m.visible
}

// State returns the modal's current state
func (m *Model) State() State {
	return m.state
}

// SetDestination replaces the typed destination
func (m *Model) SetDestination(path string) {
	m.textInput.SetValue(path)
	m.updateSummary()
}

// SetSize sets the modal size
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the export modal
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case StateInput:
			switch msg.String() {
			case "enter":
				return m, m.confirmExport()
			case "esc":
				m.Hide()
				return m, func() tea.Msg { return CancelledMsg{} }
			case "ctrl+o":
				m.overwrite = !m.overwrite
				return m, nil
			default:
				m.textInput, cmd = m.textInput.Update(msg)
				m.updateSummary()
				return m, cmd
			}
		case StateExporting:
			return m, nil
		case StateSuccess, StateError:
			// Any key closes the modal after success/error
			done := CompletedMsg{Summary: m.summary}
			if m.state == StateError {
				done.Err = errors.New(m.errorMessage)
			}
			m.Hide()
			return m, func() tea.Msg { return done }
		}

	case exportDoneMsg:
		m.summary = msg.summary
		if msg.err != nil {
			m.state = StateError
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
			return m, nil
		}
		m.state = StateSuccess
		m.successMessage = fmt.Sprintf("Exported %d file(s) to %s", msg.summary.FileCount, msg.summary.DestinationPath)
		if n := len(msg.summary.Missing); n > 0 {
			m.successMessage += fmt.Sprintf("\n%d matched file(s) were not in the selection", n)
		}
		return m, nil

	default:
		if m.state == StateInput {
			m.textInput, cmd = m.textInput.Update(msg)
		}
	}

	return m, cmd
}

// View renders the export modal
func (m *Model) View() string {
	if !m.visible {
		return ""
	}

	var content string
	switch m.state {
	case StateInput:
		content = m.renderInputState()
	case StateExporting:
		content = titleStyle.Render("Exporting...") + "\n" +
			previewStyle.Render("Please wait while files are being copied...")
	case StateSuccess:
		content = m.renderResult("Export Complete", successStyle.Render(m.successMessage))
	case StateError:
		content = m.renderResult("Export Failed", errorStyle.Render(m.errorMessage))
	}

	styled := modalStyle.Width(60).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styled)
}

func (m *Model) renderInputState() string {
	var parts []string

	parts = append(parts, titleStyle.Render("Export Matched Files"))

	if m.summary != nil {
		preview := fmt.Sprintf("Files to export: %d\nTotal size: %s",
			m.summary.FileCount, formatBytes(m.summary.TotalSize))
		if m.overwrite {
			preview += "\nExisting files will be overwritten"
		}
		parts = append(parts, previewStyle.Render(preview))
	}

	parts = append(parts, "Destination Path:")
	parts = append(parts, inputStyle.Render(m.textInput.View()))

	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}

	parts = append(parts, helpStyle.Render("Enter: Export • Ctrl+O: Toggle overwrite • Esc: Cancel"))
	return strings.Join(parts, "\n")
}

func (m *Model) renderResult(title, body string) string {
	return strings.Join([]string{
		titleStyle.Render(title),
		body,
		helpStyle.Render("Press any key to close"),
	}, "\n")
}

// confirmExport validates the destination and starts the copy
func (m *Model) confirmExport() tea.Cmd {
	destPath := strings.TrimSpace(m.textInput.Value())

	if m.summary == nil || m.summary.FileCount == 0 {
		m.errorMessage = "No matched files to export"
		return nil
	}

	m.errorMessage = ""
	m.state = StateExporting

	service, files, rows := m.service, m.files, m.rows
	opts := export.Options{DestinationPath: destPath, Overwrite: m.overwrite}
	return func() tea.Msg {
		summary, err := service.ExportMatches(context.Background(), files, rows, opts)
		return exportDoneMsg{summary: summary, err: err}
	}
}

func (m *Model) updateSummary() {
	if m.files == nil {
		return
	}
	m.summary = m.service.Plan(m.files, m.rows, strings.TrimSpace(m.textInput.Value()))
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
