package folders

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/textfinder/internal/messages"
	"github.com/cheerioskun/textfinder/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Margin(0, 0, 1, 0)

	rootStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Model is the selected-folders panel. Each folder has one base path input.
type Model struct {
	folders []models.SelectedFolder
	counts  []int

	cursor    int
	editMode  bool
	editInput textinput.Model
	editRoot  string

	focused bool
	width   int
	height  int
}

// NewModel creates an empty folder panel
func NewModel() *Model {
	input := textinput.New()
	input.Placeholder = "Enter the absolute path of this folder..."
	input.CharLimit = 1024

	return &Model{
		editInput: input,
		width:     40,
		height:    10,
	}
}

// SetFolders replaces the displayed selection
func (m *Model) SetFolders(folders []models.SelectedFolder, files *models.FileSet) {
	m.folders = folders
	m.counts = make([]int, len(folders))
	for i, f := range folders {
		if files != nil {
			m.counts[i] = files.CountUnder(f.RootName)
		}
	}

	if m.cursor >= len(folders) {
		m.cursor = len(folders) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.editMode && m.indexOf(m.editRoot) < 0 {
		m.cancelEdit()
	}
}

// Folders returns the displayed selection
func (m *Model) Folders() []models.SelectedFolder {
	return m.folders
}

// Cursor returns the index of the highlighted folder
func (m *Model) Cursor() int {
	return m.cursor
}

// IsEditing reports whether a base path input has focus
func (m *Model) IsEditing() bool {
	return m.editMode
}

// FocusRoot highlights the folder named root and opens its base path input
func (m *Model) FocusRoot(root string) tea.Cmd {
	idx := m.indexOf(root)
	if idx < 0 {
		return nil
	}
	m.cursor = idx
	return m.startEdit()
}

// Update handles messages for the panel
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.editMode {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter", "esc", "tab":
				m.cancelEdit()
				return m, nil
			default:
				before := m.editInput.Value()
				m.editInput, cmd = m.editInput.Update(msg)
				if m.editInput.Value() != before {
					return m, tea.Batch(cmd, m.basePathChanged())
				}
				return m, cmd
			}
		default:
			m.editInput, cmd = m.editInput.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.folders)-1 {
				m.cursor++
			}
		case "enter", "e":
			if m.hasFolderAtCursor() {
				return m, m.startEdit()
			}
		case "d", "delete", "x":
			if m.hasFolderAtCursor() {
				idx := m.cursor
				return m, func() tea.Msg { return messages.RemoveFolderMsg{Index: idx} }
			}
		}
	}

	return m, nil
}

func (m *Model) basePathChanged() tea.Cmd {
	root := m.editRoot
	value := m.editInput.Value()
	return func() tea.Msg {
		return messages.BasePathChangedMsg{RootName: root, Value: value}
	}
}

func (m *Model) hasFolderAtCursor() bool {
	return m.cursor >= 0 && m.cursor < len(m.folders)
}

func (m *Model) startEdit() tea.Cmd {
	f := m.folders[m.cursor]
	m.editMode = true
	m.editRoot = f.RootName
	m.editInput.SetValue(f.BasePath)
	m.editInput.CursorEnd()
	return m.editInput.Focus()
}

func (m *Model) cancelEdit() {
	m.editMode = false
	m.editRoot = ""
	m.editInput.Blur()
}

func (m *Model) indexOf(root string) int {
	for i, f := range m.folders {
		if f.RootName == root {
			return i
		}
	}
	return -1
}

// View renders the panel
func (m *Model) View() string {
	title := "📁 Selected Folders"
	if m.focused {
		title += " *"
	}

	var lines []string
	lines = append(lines, titleStyle.Render(title))

	if len(m.folders) == 0 {
		lines = append(lines, emptyStyle.Render("No folders selected"))
		lines = append(lines, "")
		lines = append(lines, helpStyle.Render("p: Pick folder"))
		return strings.Join(lines, "\n")
	}

	for i, f := range m.folders {
		marker := "  "
		if i == m.cursor && m.focused {
			marker = cursorStyle.Render("> ")
		}

		name := rootStyle.Render(f.RootName)
		if f.IsFallback() {
			name += countStyle.Render(" (files)")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, name,
			countStyle.Render(fmt.Sprintf("%d file(s)", m.counts[i]))))

		switch {
		case m.editMode && f.RootName == m.editRoot:
			lines = append(lines, "    "+m.editInput.View())
		case f.BasePath == "":
			lines = append(lines, "    "+missingStyle.Render("absolute path not set"))
		default:
			lines = append(lines, "    "+pathStyle.Render(f.BasePath))
		}
	}

	lines = append(lines, "")
	if m.editMode {
		lines = append(lines, helpStyle.Render("Enter/Esc: Done"))
	} else {
		lines = append(lines, helpStyle.Render("e: Edit path • d: Remove • p: Pick • a: Add"))
	}

	return strings.Join(lines, "\n")
}

// Component interface methods

func (m *Model) Focus() {
	m.focused = true
}

func (m *Model) Blur() {
	m.focused = false
	if m.editMode {
		m.cancelEdit()
	}
}

func (m *Model) IsFocused() bool {
	return m.focused
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editInput.Width = width - 8
}
