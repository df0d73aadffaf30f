package results

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/textfinder/internal/messages"
	"github.com/cheerioskun/textfinder/internal/results"
)

// Model is the results panel: a table of matches and the highlighted
// preview of the selected one
type Model struct {
	rows    []results.Row
	table   table.Model
	preview viewport.Model

	focused bool
	width   int
	height  int

	titleStyle     lipgloss.Style
	highlightStyle lipgloss.Style
	emptyStyle     lipgloss.Style
	helpStyle      lipgloss.Style
}

// NewModel creates an empty results panel
func NewModel() *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithHeight(5),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	vp := viewport.New(80, 3)

	return &Model{
		table:   t,
		preview: vp,
		width:   80,
		height:  12,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Margin(0, 0, 1, 0),

		highlightStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220")),

		emptyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),

		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

func columns(width int) []table.Column {
	pathW := width * 4 / 10
	posW := 10
	previewW := width - pathW - posW - 6
	if previewW < 10 {
		previewW = 10
	}
	return []table.Column{
		{Title: "Path", Width: pathW},
		{Title: "Position", Width: posW},
		{Title: "Preview", Width: previewW},
	}
}

// SetRows replaces the displayed matches
func (m *Model) SetRows(rows []results.Row) {
	m.rows = rows

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{r.Path, r.Position, r.Preview.Plain()})
	}
	m.table.SetRows(tableRows)
	m.table.GotoTop()
	m.updatePreview()
}

// Rows returns the displayed matches
func (m *Model) Rows() []results.Row {
	return m.rows
}

// Selected returns the highlighted row
func (m *Model) Selected() (results.Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return results.Row{}, false
	}
	return m.rows[i], true
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "enter", "v":
			return m, m.action(false)
		case "o", "f":
			return m, m.action(true)
		}
	}

	m.table, cmd = m.table.Update(msg)
	m.updatePreview()
	return m, cmd
}

func (m *Model) action(openFolder bool) tea.Cmd {
	row, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return messages.RowActionMsg{Row: row, OpenFolder: openFolder}
	}
}

func (m *Model) updatePreview() {
	row, ok := m.Selected()
	if !ok {
		m.preview.SetContent("")
		return
	}
	m.preview.SetContent(lipgloss.NewStyle().Width(m.preview.Width).Render(row.Preview.Render(m.highlightStyle)))
	m.preview.GotoTop()
}

// View renders the panel
func (m *Model) View() string {
	title := "🔍 Results"
	if len(m.rows) > 0 {
		title = fmt.Sprintf("🔍 Results (%d)", len(m.rows))
	}
	if m.focused {
		title += " *"
	}
	header := m.titleStyle.Render(title)

	if len(m.rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.emptyStyle.Render("No results yet"))
	}

	help := m.helpStyle.Render("Enter: View file • o: Open folder • x: Export matches")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.table.View(), m.preview.View(), help)
}

// Component interface methods

func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

func (m *Model) IsFocused() bool {
	return m.focused
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// title (2), preview (3), help (1), table header (2)
	tableHeight := height - 8
	if tableHeight < 1 {
		tableHeight = 1
	}

	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(tableHeight)

	m.preview.Width = width
	m.preview.Height = 3
	m.updatePreview()
}
