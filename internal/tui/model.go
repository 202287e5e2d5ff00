// Package tui is a terminal front end for the task list. Like the web
// view it only calls store operations and rebuilds its rows afterwards.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

type mode int

const (
	modeBrowse mode = iota
	modeAddText
	modeAddDue
	modeEdit
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E4572E"))
	filterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Padding(0, 1)
	activeFilter   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#E4572E")).Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E4572E"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#999999"))
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#29335C"))
	overdueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DB2B39"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DB2B39"))
)

// Model is the Bubble Tea model for the task list.
type Model struct {
	store  domain.Store
	filter domain.Filter
	rows   []domain.Task
	cursor int

	mode   mode
	input  textinput.Model
	draft  string // text of a task waiting for its due date
	editID int64
	status string

	now func() time.Time
}

func New(store domain.Store) Model {
	in := textinput.New()
	in.CharLimit = 256

	m := Model{
		store:  store,
		filter: domain.FilterAll,
		input:  in,
		now:    time.Now,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == modeBrowse {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.mode == modeBrowse {
		return m.handleBrowseKeys(key)
	}
	return m.handleInputKeys(key)
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case " ", "x":
		if t, ok := m.selected(); ok {
			m.store.ToggleCompleted(t.ID, !t.Completed)
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.store.Delete(t.ID)
		}

	// Moves go through Reorder by dropping the lower row onto the upper
	// one, which swaps the two neighbours.
	case "J", "shift+down":
		if m.cursor < len(m.rows)-1 {
			m.store.Reorder(m.rows[m.cursor+1].ID, m.rows[m.cursor].ID)
			m.cursor++
		}
	case "K", "shift+up":
		if m.cursor > 0 {
			m.store.Reorder(m.rows[m.cursor].ID, m.rows[m.cursor-1].ID)
			m.cursor--
		}

	case "1":
		m.setFilter(domain.FilterAll)
	case "2":
		m.setFilter(domain.FilterActive)
	case "3":
		m.setFilter(domain.FilterCompleted)
	case "tab":
		i := slices.Index(domain.Filters, m.filter)
		m.setFilter(domain.Filters[(i+1)%len(domain.Filters)])

	case "a":
		return m, m.startInput(modeAddText, "New task: ", "")
	case "e":
		if t, ok := m.selected(); ok {
			m.editID = t.ID
			return m, m.startInput(modeEdit, "Edit: ", t.Text)
		}
	}

	m.refresh()
	return m, nil
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.stopInput()
		m.status = ""
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeAddText:
			if value == "" {
				m.status = "Task text is required"
				return m, nil
			}
			m.draft = value
			m.status = ""
			return m, m.startInput(modeAddDue, "Due (YYYY-MM-DD, optional): ", "")

		case modeAddDue:
			due, err := domain.NormalizeDueDate(value)
			if err != nil {
				m.status = "Due date must look like 2024-01-31"
				return m, nil
			}
			task, _ := m.store.Add(m.draft, due)
			m.draft = ""
			m.stopInput()
			m.refresh()
			if i := slices.IndexFunc(m.rows, func(t domain.Task) bool { return t.ID == task.ID }); i >= 0 {
				m.cursor = i
			}
			return m, nil

		case modeEdit:
			m.store.Edit(m.editID, value)
			m.stopInput()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startInput(md mode, prompt, value string) tea.Cmd {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setFilter(f domain.Filter) {
	m.filter = f
	m.cursor = 0
}

// refresh rebuilds the visible rows from the store.
func (m *Model) refresh() {
	m.rows = slices.Collect(m.store.Filtered(m.filter))
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Task{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder
	now := m.now()

	b.WriteString(titleStyle.Render("Colorful Todo"))
	b.WriteString("\n\n")

	for _, f := range domain.Filters {
		style := filterStyle
		if f == m.filter {
			style = activeFilter
		}
		b.WriteString(style.Render(string(f)))
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for i, t := range m.rows {
		b.WriteString(m.renderRow(i, t, now))
		b.WriteString("\n")
	}

	active, completed := m.store.Counts()
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d active, %d completed", active, completed)))
	b.WriteString("\n")

	if m.mode != modeBrowse {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeBrowse {
		b.WriteString(helpStyle.Render("j/k move • space toggle • a add • e edit • d delete • J/K reorder • 1/2/3 filter • q quit"))
	} else {
		b.WriteString(helpStyle.Render("enter save • esc cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(i int, t domain.Task, now time.Time) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = completedStyle.Render(text)
	}

	row := fmt.Sprintf("%s%s %s", cursor, check, text)
	if t.HasDueDate() {
		style := dueStyle
		if t.Overdue(now) {
			style = overdueStyle
		}
		row += "  " + style.Render("due "+t.DueLabel(now))
	}
	return row
}
