package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cubewhy/asm-go/classfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const pageSize = 20

type poolRow struct {
	index int
	tag   string
	value string
}

type interactiveModel struct {
	err      error
	node     *classfile.ClassNode
	filename string
	rows     []poolRow
	visible  []poolRow
	filter   textinput.Model
	selected int
	offset   int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateDetail
)

func newInteractiveModel(filename string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	return &interactiveModel{filename: filename, filter: ti}
}

type loadedMsg struct {
	err  error
	node *classfile.ClassNode
	rows []poolRow
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadClass
}

func (m *interactiveModel) loadClass() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	node, err := classfile.ParseClass(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	var rows []poolRow
	for i := 1; i < len(node.ConstantPool); i++ {
		entry := node.ConstantPool[i]
		if entry.Tag == classfile.TagUnusable {
			continue
		}
		rows = append(rows, poolRow{
			index: i,
			tag:   classfile.TagName(entry.Tag),
			value: formatEntry(node.ConstantPool, entry),
		})
	}
	return loadedMsg{node: node, rows: rows}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateFilter {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
				m.clampOffset()
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
				m.clampOffset()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			case stateFilter:
				m.filter.Blur()
				m.state = stateBrowse
			case stateDetail:
				m.state = stateBrowse
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "esc":
			switch m.state {
			case stateFilter:
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				m.state = stateBrowse
			case stateDetail:
				m.state = stateBrowse
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.node = msg.node
		m.rows = msg.rows
		m.applyFilter()
	}

	if m.state == stateFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	if query == "" {
		m.visible = m.rows
	} else {
		m.visible = nil
		for _, row := range m.rows {
			if strings.Contains(strings.ToLower(row.tag), query) ||
				strings.Contains(strings.ToLower(row.value), query) {
				m.visible = append(m.visible, row)
			}
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
		m.offset = 0
	}
	m.clampOffset()
}

func (m *interactiveModel) clampOffset() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+pageSize {
		m.offset = m.selected - pageSize + 1
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.node == nil {
		return "Loading class..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Class Dump"))
	b.WriteString(" ")
	b.WriteString(m.node.Name)
	b.WriteString("\n\n")

	switch m.state {
	case stateDetail:
		row := m.visible[m.selected]
		b.WriteString(fmt.Sprintf("Entry #%d\n\n", row.index))
		b.WriteString(tagStyle.Render(row.tag))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(row.value))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))

	default:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}

		end := m.offset + pageSize
		if end > len(m.visible) {
			end = len(m.visible)
		}
		for i := m.offset; i < end; i++ {
			row := m.visible[i]
			line := fmt.Sprintf("%5d: %-19s %s", row.index, row.tag, row.value)
			if i == m.selected && m.state == stateBrowse {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching entries"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d entries • ↑/↓ select • enter detail • / filter • q quit",
			len(m.visible), len(m.rows))))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
