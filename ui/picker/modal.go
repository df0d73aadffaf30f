package picker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/textfinder/internal/messages"
)

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

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Align(lipgloss.Center).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Margin(1, 0)
)

// State represents the modal's current state
type State int

const (
	StateInput State = iota
	StateLoading
	StateError
)

// Model is the folder picker modal
type Model struct {
	textInput textinput.Model

	state   State
	mode    messages.PickMode
	visible bool
	width   int
	height  int

	fallback     bool
	errorMessage string
}

// NewModel creates a hidden picker. In fallback mode the picked folder is
// read as a flat file list.
func NewModel(fallback bool) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a folder path..."
	ti.CharLimit = 1024
	ti.Width = 50

	return &Model{
		textInput: ti,
		state:     StateInput,
		fallback:  fallback,
	}
}

// Show opens the picker for a fresh pick or an add
func (m *Model) Show(mode messages.PickMode) tea.Cmd {
	m.visible = true
	m.state = StateInput
	m.mode = mode
	m.errorMessage = ""

	if m.textInput.Value() == "" {
		if cwd, err := os.Getwd(); err == nil {
			m.textInput.SetValue(cwd)
		}
	}
	m.textInput.CursorEnd()
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

// Mode returns the pending pick mode
func (m *Model) Mode() messages.PickMode {
	return m.mode
}

// SetSize sets the modal size
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Fail shows a selection error and lets the user try another path
func (m *Model) Fail(err error) {
	m.visible = true
	m.state = StateError
	m.errorMessage = err.Error()
}

// Update handles messages for the picker
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case StateLoading:
			return m, nil
		case StateError:
			if msg.String() == "esc" {
				m.Hide()
				return m, canceled
			}
			m.state = StateInput
			m.errorMessage = ""
		}

		switch msg.String() {
		case "enter":
			return m.confirm()
		case "esc":
			m.Hide()
			return m, canceled
		default:
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}

	case messages.FoldersChangedMsg:
		if msg.Err != nil {
			m.Fail(msg.Err)
			return m, nil
		}
		m.Hide()
		return m, nil

	default:
		if m.state == StateInput {
			m.textInput, cmd = m.textInput.Update(msg)
		}
	}

	return m, cmd
}

func canceled() tea.Msg {
	return messages.SelectionCanceledMsg{}
}

func (m *Model) confirm() (*Model, tea.Cmd) {
	path := strings.TrimSpace(m.textInput.Value())
	if path == "" {
		m.state = StateError
		m.errorMessage = "Please enter a folder path"
		return m, nil
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	m.state = StateLoading
	mode := m.mode
	return m, func() tea.Msg {
		return messages.FolderRequestedMsg{Path: path, Mode: mode}
	}
}

// View renders the picker
func (m *Model) View() string {
	if !m.visible {
		return ""
	}

	var parts []string

	title := "Select Folder"
	if m.mode == messages.PickAdd {
		title = "Add Folder"
	}
	parts = append(parts, titleStyle.Render(title))

	if m.fallback {
		parts = append(parts, hintStyle.Render("Fallback mode: the folder is read as a flat file list"))
	}

	parts = append(parts, "Folder path:")
	parts = append(parts, inputStyle.Render(m.textInput.View()))

	switch m.state {
	case StateLoading:
		parts = append(parts, hintStyle.Render("Reading folder..."))
	case StateError:
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}

	parts = append(parts, helpStyle.Render("Enter: Select • Esc: Cancel"))

	content := strings.Join(parts, "\n")
	styled := modalStyle.Width(60).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styled)
}
